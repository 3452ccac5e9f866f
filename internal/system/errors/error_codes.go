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

package errors

const errorPrefix = "IDR-"

var (
	// Client error codes

	NORMALIZATION = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Identity attributes could not be normalized.",
	}

	INVALID_SNAPSHOT = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Invalid identities snapshot.",
	}

	INVALID_CONFIG = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Invalid configuration.",
	}

	// Server error codes

	SOURCE_UNAVAILABLE = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Identity source is unavailable.",
	}

	SOURCE_SCHEMA = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Identity source schema is not supported.",
	}

	IDENTITY_MISMATCH = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Identity does not belong to its unique identity.",
	}

	PERSIST_MAPPING = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while persisting identity mapping.",
	}

	MAPPING_STORE_INIT = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Unable to initialize mapping store.",
	}

	WRITE_SNAPSHOT = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while writing identities snapshot.",
	}
)
