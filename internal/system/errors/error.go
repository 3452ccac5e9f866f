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

import "fmt"

type ErrorMessage struct {
	Code        string `json:"error_code"`
	Message     string `json:"error_message"`
	Description string `json:"error_description"`
	TraceID     string `json:"trace_id,omitempty"`
}

// ClientError reports bad input: a malformed snapshot, a missing setting.
type ClientError struct {
	ErrorMessage
}

// ServerError reports a failure of the engine or one of its collaborators.
type ServerError struct {
	ErrorMessage
	Err error
}

// PersistenceError reports a failed mapping write. StorageCode and StorageMessage
// carry the storage engine's own error code and message unchanged.
type PersistenceError struct {
	ErrorMessage
	StorageCode    string
	StorageMessage string
	Err            error
}

func (e *ServerError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Code, e.Message, e.Description, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func (e *ClientError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("[%s] %s %s", e.Code, e.Message, e.Description)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PersistenceError) Error() string {
	if e.StorageCode != "" {
		return fmt.Sprintf("[%s] %s %s (%s - %s)", e.Code, e.Message, e.Description, e.StorageCode, e.StorageMessage)
	}
	return fmt.Sprintf("[%s] %s %s: %v", e.Code, e.Message, e.Description, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewServerError(msg ErrorMessage, cause error) *ServerError {
	return &ServerError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

func NewClientError(msg ErrorMessage) *ClientError {
	return &ClientError{
		ErrorMessage: msg,
	}
}

func NewPersistenceError(msg ErrorMessage, storageCode, storageMessage string, cause error) *PersistenceError {
	return &PersistenceError{
		ErrorMessage:   msg,
		StorageCode:    storageCode,
		StorageMessage: storageMessage,
		Err:            cause,
	}
}

// WithDescription returns a copy of the message carrying the given description.
func (m ErrorMessage) WithDescription(description string) ErrorMessage {
	m.Description = description
	return m
}

// WithTraceID returns a copy of the message carrying the given trace id.
func (m ErrorMessage) WithTraceID(traceID string) ErrorMessage {
	m.TraceID = traceID
	return m
}
