package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/sptty/internal/models"
)

var _ list.Item = deviceItem{}

// deviceItem wraps [models.Device] to implement [list.Item].
type deviceItem struct {
	device models.Device
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string {
	if i.device.IsActive {
		return "✔ " + i.device.Name
	}
	return i.device.Name
}
func (i deviceItem) Description() string {
	desc := fmt.Sprintf("%s • volume %d%%", i.device.Type, i.device.VolumePercent)
	if i.device.IsRestricted {
		desc += " • restricted"
	}
	return desc
}
