// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sentence

import "strings"

// Split breaks s at every occurrence of delim.
//
// The result always has one more element than there are delimiters in s:
// adjacent delimiters produce empty fields and a string without a delimiter
// comes back as a single field. Nothing is trimmed. delim is a raw byte,
// not a rune, so values above 0x7f match that byte only.
func Split(s string, delim byte) []string {
	return strings.Split(s, string([]byte{delim}))
}
