package normalizer

import (
	"github.com/mitchellh/mapstructure"
	"github.com/webhookx-io/eventsvc/pkg/types"
)

// FileRef references an attachment that has already been written to upload storage.
type FileRef struct {
	Filename string
}

// Path returns the server-relative URL the file is served at.
func (f *FileRef) Path() string {
	return UploadPrefix + f.Filename
}

// MissingFields lists the required fields a payload lacks. Empty means valid.
type MissingFields []string

func (m MissingFields) Empty() bool {
	return len(m) == 0
}

// Draft is the canonical shape of an event payload. Keys the service does
// not know about are carried in Extra.
type Draft struct {
	Name        interface{}            `mapstructure:"name"`
	Schedule    interface{}            `mapstructure:"schedule"`
	SubCategory interface{}            `mapstructure:"sub_category"`
	RigorRank   interface{}            `mapstructure:"rigor_rank"`
	Moderator   interface{}            `mapstructure:"moderator"`
	Attendees   interface{}            `mapstructure:"attendees"`
	Files       interface{}            `mapstructure:"files"`
	Extra       map[string]interface{} `mapstructure:",remain"`
}

func decode(raw map[string]interface{}) *Draft {
	draft := &Draft{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: draft,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		// carry everything through untouched
		draft = &Draft{Extra: make(map[string]interface{}, len(raw))}
		for k, v := range raw {
			draft.Extra[k] = v
		}
	}
	if draft.Extra == nil {
		draft.Extra = make(map[string]interface{})
	}
	return draft
}

// Stored reads a document that was normalized when it was written. Aliases
// are resolved; values are taken as stored and never coerced again.
func Stored(doc map[string]interface{}) *Draft {
	draft := decode(doc)
	draft.resolveAliases()
	return draft
}

// Normalize turns a loosely typed payload into a Draft. It never fails:
// required fields that are absent are reported in the returned list.
func Normalize(raw map[string]interface{}, upload *FileRef) (*Draft, MissingFields) {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	draft := decode(raw)

	draft.resolveAliases()

	if draft.RigorRank != nil {
		draft.RigorRank = coerceInt(draft.RigorRank)
	}

	missing := draft.Missing()

	if draft.Attendees != nil {
		draft.Attendees = coerceJSON(draft.Attendees)
	}

	if upload != nil {
		draft.attach(upload)
	}

	draft.Name = coerceNumbers(draft.Name)
	draft.Schedule = coerceNumbers(draft.Schedule)
	draft.SubCategory = coerceNumbers(draft.SubCategory)
	draft.RigorRank = coerceNumbers(draft.RigorRank)
	draft.Moderator = coerceNumbers(draft.Moderator)
	draft.Attendees = coerceNumbers(draft.Attendees)
	draft.Files = coerceNumbers(draft.Files)
	for k, v := range draft.Extra {
		draft.Extra[k] = coerceNumbers(v)
	}

	return draft, missing
}

func (d *Draft) field(name string) *interface{} {
	switch name {
	case FieldName:
		return &d.Name
	case FieldSchedule:
		return &d.Schedule
	case FieldSubCategory:
		return &d.SubCategory
	case FieldRigorRank:
		return &d.RigorRank
	case FieldModerator:
		return &d.Moderator
	case FieldAttendees:
		return &d.Attendees
	case FieldFiles:
		return &d.Files
	}
	return nil
}

func (d *Draft) resolveAliases() {
	for _, alias := range Aliases {
		target := d.field(alias.Field)
		for _, key := range alias.Aliases {
			v, ok := d.Extra[key]
			if !ok {
				continue
			}
			delete(d.Extra, key)
			if *target == nil && v != nil {
				*target = v
			}
		}
	}
}

// Missing reports which required fields are absent or empty strings.
func (d *Draft) Missing() MissingFields {
	missing := make(MissingFields, 0)
	for _, name := range RequiredFields {
		v := *d.field(name)
		if v == nil {
			missing = append(missing, name)
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (d *Draft) attach(upload *FileRef) {
	files, ok := d.Files.(map[string]interface{})
	if !ok {
		files = make(map[string]interface{})
	} else {
		copied := make(map[string]interface{}, len(files)+1)
		for k, v := range files {
			copied[k] = v
		}
		files = copied
	}
	files[FieldImage] = upload.Path()
	d.Files = files
}

// HasIdentity reports whether the draft carries name or schedule, the two
// fields that take part in duplicate detection.
func (d *Draft) HasIdentity() bool {
	return d.Name != nil || d.Schedule != nil
}

// NameText is the name as the store compares it.
func (d *Draft) NameText() string {
	return ScheduleText(d.Name)
}

// Document renders the draft as a flat document with canonical keys only.
func (d *Draft) Document() types.Document {
	doc := make(types.Document, len(d.Extra)+7)
	for k, v := range d.Extra {
		doc[k] = v
	}
	for _, name := range []string{FieldName, FieldSchedule, FieldSubCategory, FieldRigorRank, FieldModerator, FieldAttendees, FieldFiles} {
		if v := *d.field(name); v != nil {
			doc[name] = v
		}
	}
	return doc
}

// Merge overlays the fields present in patch onto a copy of d. It is used to
// build the full name/schedule pair of a partial update.
func (d *Draft) Merge(patch *Draft) *Draft {
	merged := Stored(d.Document())
	for k, v := range patch.Extra {
		merged.Extra[k] = v
	}
	for _, name := range []string{FieldName, FieldSchedule, FieldSubCategory, FieldRigorRank, FieldModerator, FieldAttendees, FieldFiles} {
		if v := *patch.field(name); v != nil {
			*merged.field(name) = v
		}
	}
	return merged
}
