// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package blueprint

import "strconv"

// namePool holds the class names used so far in one compilation.
// Class names are unique across every root of the call.
type namePool map[string]struct{}

// reserve returns base if unused, otherwise base2, base3, ...
func (p namePool) reserve(base string) string {
	return reserveWith(p, base, "")
}

// attrPool holds the attribute names used in one class body.
type attrPool map[string]struct{}

// reserve sanitizes key and returns it if unused, otherwise name_2, name_3, ...
func (p attrPool) reserve(key string) string {
	return reserveWith(p, SanitizeIdent(key), "_")
}

func reserveWith[P ~map[string]struct{}](seen P, base, sep string) string {
	if _, taken := seen[base]; !taken {
		seen[base] = struct{}{}
		return base
	}
	for i := 2; ; i++ {
		cand := base + sep + strconv.Itoa(i)
		if _, taken := seen[cand]; !taken {
			seen[cand] = struct{}{}
			return cand
		}
	}
}
