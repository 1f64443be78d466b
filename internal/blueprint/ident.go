// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import (
	"regexp"
	"strings"
	"unicode"
)

// pythonKeywords are the hard keywords of the target language.
var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {},
	"and": {}, "as": {}, "assert": {}, "async": {}, "await": {},
	"break": {}, "class": {}, "continue": {}, "def": {}, "del": {},
	"elif": {}, "else": {}, "except": {}, "finally": {}, "for": {},
	"from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {},
	"pass": {}, "raise": {}, "return": {}, "try": {}, "while": {},
	"with": {}, "yield": {},
}

// IsKeyword reports whether s is a reserved keyword.
func IsKeyword(s string) bool {
	_, ok := pythonKeywords[s]
	return ok
}

// IsIdentifier reports whether s is a legal, non-keyword identifier.
func IsIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.In(r, unicode.L, unicode.Nl) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.In(r, unicode.L, unicode.Nl, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc) {
			return false
		}
	}
	return true
}

var (
	nonIdentRe    = regexp.MustCompile(`[^0-9a-zA-Z_]+`)
	underscoresRe = regexp.MustCompile(`_+`)
)

// SanitizeIdent turns an arbitrary column name into a legal attribute name.
//
//	"first name" -> "first_name"
//	"2nd"        -> "_2nd"
//	"class"      -> "class_"
//	"%%"         -> "x"
func SanitizeIdent(name string) string {
	s := strings.Trim(nonIdentRe.ReplaceAllString(name, "_"), "_")
	if s == "" {
		s = "x"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	if IsKeyword(s) {
		s += "_"
	}
	return s
}

// ClassName converts a raw key into a separator-free, title-cased class
// name, e.g. "customer_address" -> "CustomerAddress".
func ClassName(key string) string {
	var sb strings.Builder
	for _, part := range underscoresRe.Split(SanitizeIdent(key), -1) {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	name := sb.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	if IsKeyword(name) {
		name += "_"
	}
	return name
}
