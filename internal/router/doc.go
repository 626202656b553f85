// Package router walks the project tree once per build and decides which
// extraction path each file takes: native Go extraction, or one or more
// plugin buckets keyed by claimed extension.
package router
