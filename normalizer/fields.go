package normalizer

const (
	FieldName        = "name"
	FieldSchedule    = "schedule"
	FieldSubCategory = "sub_category"
	FieldRigorRank   = "rigor_rank"
	FieldModerator   = "moderator"
	FieldAttendees   = "attendees"
	FieldFiles       = "files"
	FieldImage       = "image"
)

// Alias lists the alternative spellings accepted for a canonical field, in lookup order.
type Alias struct {
	Field   string
	Aliases []string
}

var Aliases = []Alias{
	{Field: FieldSubCategory, Aliases: []string{"subCategory"}},
	{Field: FieldRigorRank, Aliases: []string{"rigorRank", "rigor"}},
	{Field: FieldModerator, Aliases: []string{"moderatorId", "moderator_name"}},
}

// RequiredFields are checked in this order, so the missing list is stable.
var RequiredFields = []string{FieldName, FieldSchedule}

// UploadPrefix is the URL path under which stored attachments are served.
const UploadPrefix = "/uploads/"
