package web

import "embed"

// Templates holds the layouts, partials and pages parsed by the view engine.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and images served under /static.
//
//go:embed static/**/*
var Static embed.FS
