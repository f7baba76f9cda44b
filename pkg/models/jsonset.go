package models

import (
	"encoding/json"
	"sort"
)

// marshalStringSet encodes a map[string]struct{}-shaped set as a sorted JSON array,
// shared by EvidenceSet and any future id-set type that needs jsonb storage.
func marshalStringSet(s map[string]struct{}) ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// unmarshalStringSet decodes a JSON array into a slice of ids.
func unmarshalStringSet(data []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
