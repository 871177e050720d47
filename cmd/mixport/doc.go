// Package main hosts the mixport CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides, and
// hands off to the internal packages: export runs a full Mixxx to Rekordbox
// export, collections lists what would be exported, check reports tool and
// directory readiness, and config scaffolds or validates the TOML file.
// Terminal-specific behaviour (prompts, progress bars, colour) is decided
// here so the internal packages stay free of it.
package main
