// Command scopecheck reports misuses of longjump recovery scopes.
//
// USAGE:
//
//	scopecheck [-flag] [package]
package main

import (
	"github.com/stealthrocket/longjump/scopecheck"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() { singlechecker.Main(scopecheck.Analyzer) }
