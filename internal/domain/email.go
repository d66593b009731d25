package domain

// TemplateEmail is a transactional email rendered by the provider from a
// stored template. Params cross into a third-party system and must never be
// logged.
type TemplateEmail struct {
	TemplateID  int64
	To          string
	SenderEmail string
	SenderName  string
	Params      map[string]string
}
