// Package cli is the media-catalog command tree.
//
// Every command loads configuration through startup.LoadConfig, opens the
// catalog database and builds the same collaborators the browser uses: the
// directory scanner, the listing cache, the tag store and the transfer
// allocator. Commands print aligned columns by default and JSON with --json.
//
// When --metrics-addr (or metrics_addr in the config) is set, /metrics and
// /healthz are served for as long as the command runs, which is mostly useful
// with browse.
package cli
