// Package tui is the interactive browser. It owns a catalog.Controller,
// forwards key presses to it and renders the events it publishes. It is the
// only consumer of the controller's event channel.
package tui
