// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"slices"
	"strings"
)

// MapToArgs renders a name to value map as command-line arguments, sorted by
// name. true becomes --name, false --noname, nil a bare --name, and slices a
// comma joined value.
func MapToArgs(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			args = append(args, "--"+k)
		case bool:
			if v {
				args = append(args, "--"+k)
			} else {
				args = append(args, "--no"+k)
			}
		default:
			if isSlice(v) {
				items := sliceItems(v)
				parts := make([]string, len(items))
				for i, it := range items {
					parts[i] = formatValue(it)
				}
				args = append(args, "--"+k+"="+strings.Join(parts, ","))
				continue
			}
			args = append(args, "--"+k+"="+formatValue(v))
		}
	}
	return args
}
