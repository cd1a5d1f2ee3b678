//go:build cgo

package database

import (
	_ "github.com/godror/godror" // OCI Oracle driver, registered as "godror"
)
