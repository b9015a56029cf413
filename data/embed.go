package data

import (
	_ "embed"
)

//go:embed schemas/meta-schema.json
var MetaSchema []byte

//go:embed schemas/views-schema.json
var ViewsSchema []byte
