package model

import "encoding/json"

// MergePatch applies patch to doc using JSON merge patch semantics
// (RFC 7386): null values delete keys, nested objects merge recursively,
// everything else replaces. Non-SQL storage backends use this so that all
// backends agree with SQLite's json_patch.
func MergePatch(doc, patch json.RawMessage) (json.RawMessage, error) {
	var patchVal any
	if err := json.Unmarshal(patch, &patchVal); err != nil {
		return nil, err
	}
	patchObj, ok := patchVal.(map[string]any)
	if !ok {
		// A non-object patch replaces the document wholesale
		return append(json.RawMessage(nil), patch...), nil
	}

	var docVal any
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &docVal); err != nil {
			return nil, err
		}
	}
	docObj, ok := docVal.(map[string]any)
	if !ok {
		docObj = map[string]any{}
	}

	return json.Marshal(mergeObjects(docObj, patchObj))
}

func mergeObjects(doc, patch map[string]any) map[string]any {
	for key, val := range patch {
		if val == nil {
			delete(doc, key)
			continue
		}
		if patchChild, ok := val.(map[string]any); ok {
			if docChild, ok := doc[key].(map[string]any); ok {
				doc[key] = mergeObjects(docChild, patchChild)
				continue
			}
			// Target is not an object; merge into a fresh one to strip nulls
			doc[key] = mergeObjects(map[string]any{}, patchChild)
			continue
		}
		doc[key] = val
	}
	return doc
}
