package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/chat"
	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
)

// RenderDelivery formats a delivery as colored Telnet text. The first line
// carries the room and sender; continuation lines are indented beneath it.
func RenderDelivery(d chat.Delivery) string {
	lines := strings.Split(strings.ReplaceAll(d.Text, "\r\n", "\n"), "\n")

	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.Cyan, "[%s]", d.RoomID))
	b.WriteString(" ")
	b.WriteString(telnet.Colorize(telnet.Bold, d.From))
	b.WriteString(": ")
	b.WriteString(lines[0])
	for _, l := range lines[1:] {
		b.WriteString("\r\n  ")
		b.WriteString(l)
	}
	return b.String()
}

// RenderRoom describes the room a member just entered.
func RenderRoom(r chat.Room, present []string) string {
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightYellow, "You are in %s (%s).", r.Name, r.ID))
	if r.Topic != "" {
		b.WriteString("\r\n")
		b.WriteString(telnet.Colorize(telnet.White, r.Topic))
	}
	if len(present) > 0 {
		b.WriteString("\r\n")
		b.WriteString(telnet.Colorf(telnet.Green, "Here: %s", strings.Join(present, ", ")))
	}
	return b.String()
}

// RenderRoomList formats the room catalogue for /rooms.
func RenderRoomList(rooms []chat.Room) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Rooms:"))
	for _, r := range rooms {
		b.WriteString("\r\n")
		line := fmt.Sprintf("  %s%-16s%s %s", telnet.BrightCyan, r.ID, telnet.Reset, r.Name)
		if r.Topic != "" {
			line += telnet.Colorf(telnet.Dim, " - %s", r.Topic)
		}
		b.WriteString(line)
	}
	return b.String()
}
