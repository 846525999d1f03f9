package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"media-catalog/internal/mediatypes"
)

// ErrMalformed is returned when a payload's top-level shape is wrong.
var ErrMalformed = errors.New("malformed payload")

type object map[string]any

func parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

func parseArray(data []byte) ([]any, error) {
	v, err := parse(data)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array", ErrMalformed)
	}
	return arr, nil
}

func (o object) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

func (o object) optString(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (o object) optLong(key string) int64 {
	switch v := o[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func (o object) optInt(key string) int32 {
	return int32(o.optLong(key))
}

func (o object) optBool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case json.Number:
		return v.String() != "0"
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (o object) optArray(key string) []any {
	if a, ok := o[key].([]any); ok {
		return a
	}
	return nil
}

// optKind reads a kind stored either as its integer code or its name.
func (o object) optKind(key string) mediatypes.Kind {
	if s, ok := o[key].(string); ok {
		switch strings.ToLower(s) {
		case "folder":
			return mediatypes.KindFolder
		case "photo":
			return mediatypes.KindPhoto
		case "video":
			return mediatypes.KindVideo
		case "audio":
			return mediatypes.KindAudio
		}
		if n, err := strconv.Atoi(s); err == nil {
			return mediatypes.KindFromInt(n)
		}
		return mediatypes.KindUnknown
	}
	if !o.has(key) {
		return mediatypes.KindUnknown
	}
	return mediatypes.KindFromInt(int(o.optLong(key)))
}

// DecodeFileItems decodes a JSON array of FileItems. Elements that are not
// objects are skipped. A JSON null decodes to an empty list.
func DecodeFileItems(data []byte) ([]FileItem, error) {
	arr, err := parseArray(data)
	if err != nil {
		return nil, err
	}
	items := make([]FileItem, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			items = append(items, fileItemFrom(m))
		}
	}
	return items, nil
}

func fileItemFrom(o object) FileItem {
	item := FileItem{
		Kind:       o.optKind("kind"),
		Name:       o.optString("name"),
		Path:       o.optString("path"),
		ParentName: o.optString("parent_name"),
		ParentPath: o.optString("parent_path"),
		ModifiedAt: o.optLong("modified_at"),
		Size:       o.optLong("size"),
		CanRead:    o.optBool("can_read"),
		IsSelected: o.optBool("is_selected"),
		HasTag:     o.optBool("has_tag"),
		NameHash:   o.optInt("name_hash"),
		PathHash:   o.optInt("path_hash"),
	}
	if !o.has("name_hash") {
		item.NameHash = Hash32(item.Name)
	}
	if !o.has("path_hash") {
		item.PathHash = Hash32(item.Path)
	}
	return item
}

func tagDirEntryFrom(o object) TagDirEntry {
	kind := o.optKind("type")
	if !o.has("type") && o.has("kind") {
		kind = o.optKind("kind")
	}
	return TagDirEntry{
		ID:      o.optLong("id"),
		OwnerID: o.optLong("owner_id"),
		Name:    o.optString("name"),
		Path:    o.optString("path"),
		Kind:    kind,
		Size:    o.optLong("size"),
	}
}

func tagFullFrom(o object) TagFull {
	raw := o.optArray("dirs")
	entries := make([]TagDirEntry, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			e := tagDirEntryFrom(m)
			if e.Path == "" {
				continue
			}
			entries = append(entries, e)
		}
	}
	return TagFull{Name: o.optString("name"), Entries: entries}
}

// DecodeTagBackup decodes a backup document of the form {"tags": [TagFull...]}.
// A bare array of TagFull is accepted as well.
func DecodeTagBackup(data []byte) ([]TagFull, error) {
	v, err := parse(data)
	if err != nil {
		return nil, err
	}

	var raw []any
	switch t := v.(type) {
	case map[string]any:
		raw = object(t).optArray("tags")
	case []any:
		raw = t
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformed)
	}

	tags := make([]TagFull, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			tags = append(tags, tagFullFrom(m))
		}
	}
	return tags, nil
}
