package postgresql

import (
	"bytes"
	"fmt"

	"gamelink-suite/utils/oauth"

	"github.com/bytedance/sonic"
)

var jsonNull = []byte("null")

// parseScopeColumn decodes a jsonb scope column. present is false for SQL NULL
// and JSON null. Anything other than an array of scope strings is an error.
func parseScopeColumn(raw []byte) (scopes oauth.ScopeSet, present bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, false, nil
	}
	var values []string
	if err := sonic.Unmarshal(trimmed, &values); err != nil {
		return nil, true, fmt.Errorf("scope column is not a JSON string array: %w", err)
	}
	set, err := oauth.ParseScopeSet(values)
	if err != nil {
		return nil, true, fmt.Errorf("scope column: %w", err)
	}
	return set, true, nil
}

func encodeScopeColumn(scopes oauth.ScopeSet) (string, error) {
	data, err := sonic.Marshal([]string(scopes.Clone()))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
