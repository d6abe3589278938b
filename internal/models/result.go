// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Result is the envelope returned by mutating service operations. Expected
// validation outcomes are reported with Success=false instead of an error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// OK builds a successful result.
func OK[T any](msg string, data T) Result[T] {
	return Result[T]{Success: true, Message: msg, Data: data}
}

// Fail builds a failed result carrying only a message.
func Fail[T any](msg string) Result[T] {
	return Result[T]{Success: false, Message: msg}
}
