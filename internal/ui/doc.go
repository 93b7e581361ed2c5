// Package ui implements an interactive device picker using bubbletea's Elm architecture.
//
// The picker moves through three views:
//  1. [LoadingView] : fetch the user's Spotify Connect devices
//  2. [ListView] : browse and filter devices; the active one is marked with ✔
//  3. [DoneView] : playback was transferred, or the transfer failed
//
// The [Model] implements bubbletea's Init/Update/View pattern, receiving results through the [Msg] union.
// Device fetches and transfers run as [tea.Cmd]s against a [DeviceController].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, p, q) with contextual help from charmbracelet/bubbles/help.
//
// [Palette] holds the lipgloss styles shared with plain text output.
package ui
