package repository

import (
	"fmt"
	"sort"
	"strings"

	"kanban_board/internal/domain"
)

// setClause renders "col = $1, col2 = $2" for fields in key order. encode,
// when set, converts a field value into its SQL argument.
func setClause(fields map[string]any, columns map[string]string, encode func(field string, v any) (any, error)) (string, []any, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := columns[k]; !ok {
			return "", nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, k)
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: empty update", domain.ErrUnknownField)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		v := fields[k]
		if encode != nil {
			var err error
			if v, err = encode(k, v); err != nil {
				return "", nil, err
			}
		}
		parts[i] = fmt.Sprintf("%s = $%d", columns[k], i+1)
		args[i] = v
	}
	return strings.Join(parts, ", "), args, nil
}
