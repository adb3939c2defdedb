package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// ImageRef points at a single stored image. Keys other than cdnPath and alt
// are kept as-is so clients can attach their own metadata.
type ImageRef struct {
	CdnPath string  `json:"cdnPath" binding:"required"`
	Alt     *string `json:"alt,omitempty" binding:"omitnil,min=1"`

	extra map[string]json.RawMessage
}

// Images groups every image attached to a recipe.
type Images struct {
	Hero     *ImageRef           `json:"hero,omitempty" binding:"omitempty"`
	Gallery  []ImageRef          `json:"gallery,omitempty" binding:"omitempty,dive"`
	Variants map[string]ImageRef `json:"variants,omitempty" binding:"omitempty,dive"`

	extra map[string]json.RawMessage
}

var imageRefKeys = []string{"cdnPath", "alt"}
var imagesKeys = []string{"hero", "gallery", "variants"}

// HeroPath returns the hero cdnPath, or "" when there is no hero.
func (im Images) HeroPath() string {
	if im.Hero == nil {
		return ""
	}
	return im.Hero.CdnPath
}

// WithHeroPath returns a copy of im whose hero points at path. Every other key
// of images and of the hero ref is carried over unchanged.
func (im Images) WithHeroPath(path string) Images {
	out := im.clone()
	if out.Hero == nil {
		out.Hero = &ImageRef{}
	}
	out.Hero.CdnPath = path
	return out
}

// Extra returns the unrecognised top-level keys.
func (im Images) Extra() map[string]json.RawMessage {
	return copyRaw(im.extra)
}

// SetExtra replaces an unrecognised top-level key.
func (im *Images) SetExtra(key string, value json.RawMessage) {
	if im.extra == nil {
		im.extra = make(map[string]json.RawMessage)
	}
	im.extra[key] = value
}

func (im Images) clone() Images {
	out := Images{extra: copyRaw(im.extra)}
	if im.Hero != nil {
		h := im.Hero.clone()
		out.Hero = &h
	}
	if im.Gallery != nil {
		out.Gallery = make([]ImageRef, len(im.Gallery))
		for i, ref := range im.Gallery {
			out.Gallery[i] = ref.clone()
		}
	}
	if im.Variants != nil {
		out.Variants = make(map[string]ImageRef, len(im.Variants))
		for k, ref := range im.Variants {
			out.Variants[k] = ref.clone()
		}
	}
	return out
}

// MarshalJSON writes the known fields followed by any preserved keys.
func (im Images) MarshalJSON() ([]byte, error) {
	fields := copyRaw(im.extra)
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	if im.Hero != nil {
		b, err := json.Marshal(im.Hero)
		if err != nil {
			return nil, err
		}
		fields["hero"] = b
	}
	if im.Gallery != nil {
		b, err := json.Marshal(im.Gallery)
		if err != nil {
			return nil, err
		}
		fields["gallery"] = b
	}
	if im.Variants != nil {
		b, err := json.Marshal(im.Variants)
		if err != nil {
			return nil, err
		}
		fields["variants"] = b
	}
	return encodeObject(fields)
}

// UnmarshalJSON reads the known fields and keeps the rest.
func (im *Images) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	*im = Images{}
	if raw, ok := fields["hero"]; ok && !isNull(raw) {
		var hero ImageRef
		if err := json.Unmarshal(raw, &hero); err != nil {
			return err
		}
		im.Hero = &hero
	}
	if raw, ok := fields["gallery"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &im.Gallery); err != nil {
			return err
		}
	}
	if raw, ok := fields["variants"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &im.Variants); err != nil {
			return err
		}
	}
	im.extra = stripKeys(fields, imagesKeys)
	return nil
}

func (r ImageRef) clone() ImageRef {
	out := ImageRef{CdnPath: r.CdnPath, extra: copyRaw(r.extra)}
	if r.Alt != nil {
		alt := *r.Alt
		out.Alt = &alt
	}
	return out
}

// Extra returns the unrecognised keys of the ref.
func (r ImageRef) Extra() map[string]json.RawMessage {
	return copyRaw(r.extra)
}

// MarshalJSON writes cdnPath, alt and any preserved keys.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	fields := copyRaw(r.extra)
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	b, err := json.Marshal(r.CdnPath)
	if err != nil {
		return nil, err
	}
	fields["cdnPath"] = b
	if r.Alt != nil {
		b, err := json.Marshal(*r.Alt)
		if err != nil {
			return nil, err
		}
		fields["alt"] = b
	}
	return encodeObject(fields)
}

// UnmarshalJSON reads cdnPath and alt and keeps the rest.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	*r = ImageRef{}
	if raw, ok := fields["cdnPath"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &r.CdnPath); err != nil {
			return err
		}
	}
	if raw, ok := fields["alt"]; ok && !isNull(raw) {
		var alt string
		if err := json.Unmarshal(raw, &alt); err != nil {
			return err
		}
		r.Alt = &alt
	}
	r.extra = stripKeys(fields, imageRefKeys)
	return nil
}

var errNotObject = errors.New("expected a JSON object")

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeObject emits keys in sorted order so stored JSON is stable.
func encodeObject(fields map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func stripKeys(fields map[string]json.RawMessage, known []string) map[string]json.RawMessage {
	for _, k := range known {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func copyRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
