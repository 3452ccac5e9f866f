/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/wso2/identity-reconciler/internal/identity/model"
	"golang.org/x/text/cases"
)

const (
	// unsetMarker stands for an absent or empty attribute. It is stripped from
	// every real value, so it never collides with one.
	unsetMarker = "\x00"
	// fieldDelimiter separates the normalized attributes. Stripped from values too.
	fieldDelimiter = "\x1f"
)

// Fingerprint derives the canonical identifier of a person from the attributes of
// one of its identities. The function is total and deterministic: attributes that
// normalize to the same values always give the same 40 char hex identifier.
//
// Every attribute is trimmed. Email, name and username are case folded and runs
// of whitespace inside name are collapsed to a single space. Source is kept as
// given. Empty values become the unset marker. The four values are joined with
// the field delimiter and hashed with SHA-1.
func Fingerprint(source, email, name, username string) string {

	fields := []string{
		normalizeSource(source),
		normalizeAttribute(email, false),
		normalizeAttribute(name, true),
		normalizeAttribute(username, false),
	}

	sum := sha1.Sum([]byte(strings.Join(fields, fieldDelimiter)))
	return hex.EncodeToString(sum[:])
}

// FingerprintIdentity is Fingerprint over the attributes of a raw identity.
func FingerprintIdentity(identity model.RawIdentity) string {
	return Fingerprint(identity.Source, model.StrVal(identity.Email), model.StrVal(identity.Name),
		model.StrVal(identity.Username))
}

func normalizeSource(source string) string {

	source = strings.TrimSpace(stripReserved(source))
	if source == "" {
		return unsetMarker
	}
	return source
}

func normalizeAttribute(value string, collapse bool) string {

	value = stripReserved(value)
	if collapse {
		value = strings.Join(strings.Fields(value), " ")
	} else {
		value = strings.TrimSpace(value)
	}
	if value == "" {
		return unsetMarker
	}
	return cases.Fold().String(value)
}

// stripReserved drops the unset marker and the field delimiter from a value.
func stripReserved(value string) string {
	return strings.Map(func(r rune) rune {
		if r == 0x00 || r == 0x1f {
			return -1
		}
		return r
	}, value)
}
