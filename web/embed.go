// Package web embeds the storefront templates and static assets so the
// binary ships self-contained.
package web

import "embed"

// Templates holds the layouts, partials and pages.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets and images served under /static/.
//
//go:embed static/**/*
var Static embed.FS
