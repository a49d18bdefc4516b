// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import "strings"

// Suggestions returns the options closest to a misspelled flag name.
//
// Each option is cut to the length of attempt before comparing, so a prefix
// of a long name still matches. Nothing is suggested for attempts of two
// characters or fewer, or when the best match needs edits on half the
// attempt or more. Ties are returned in input order.
func Suggestions(attempt string, longopts []string) []string {
	a := []rune(attempt)
	if len(a) <= 2 || len(longopts) == 0 {
		return nil
	}
	options := make([]string, len(longopts))
	for i, o := range longopts {
		options[i], _, _ = strings.Cut(o, "=")
	}
	dists := make([]int, len(options))
	best := -1
	for i, o := range options {
		r := []rune(o)
		if len(r) > len(a) {
			r = r[:len(a)]
		}
		dists[i] = damerauLevenshtein(a, r)
		if best < 0 || dists[i] < best {
			best = dists[i]
		}
	}
	if float64(best) >= 0.5*float64(len(a)) {
		return nil
	}
	var out []string
	for i, o := range options {
		if dists[i] == best {
			out = append(out, o)
		}
	}
	return out
}

// damerauLevenshtein returns the optimal string alignment distance: the
// number of insertions, deletions, substitutions and adjacent transpositions
// that turn a into b, editing no substring twice.
func damerauLevenshtein(a, b []rune) int {
	d := make([][]int, len(a)+1)
	for i := range d {
		d[i] = make([]int, len(b)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(a)][len(b)]
}
