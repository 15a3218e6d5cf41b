package models

// CatalogImage is the serialized form of a discovered image, used by the
// images command.
type CatalogImage struct {
	Index  int     `yaml:"index" json:"index"`
	Name   string  `yaml:"name" json:"name"`
	Path   string  `yaml:"path" json:"path"`
	SizeKB float64 `yaml:"size_kb" json:"size_kb"`
}
