package prompt

import (
	"embed"
	"io/fs"
)

//go:embed builtin/*.md
var builtinFiles embed.FS

// Builtin returns the templates shipped with inkwell, one per menu action.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFiles, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}
