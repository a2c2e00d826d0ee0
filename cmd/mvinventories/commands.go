package main

import (
	"fmt"
	"strings"

	"github.com/annel0/mvinventories/internal/eventbus"
)

// hostCommand строка stdin, переведённая в событие хоста
type hostCommand struct {
	eventType string
	payload   interface{}
	quit      bool
}

// parseCommand разбирает команду консоли хоста.
// Пустая строка даёт пустую команду.
func parseCommand(line string) (hostCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return hostCommand{}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "change":
		if len(fields) != 4 {
			return hostCommand{}, fmt.Errorf("использование: change <игрок> <из> <в>")
		}
		return hostCommand{
			eventType: eventbus.EventWorldChanged,
			payload:   eventbus.WorldChanged{PlayerID: fields[1], From: fields[2], To: fields[3]},
		}, nil
	case "reload":
		return hostCommand{
			eventType: eventbus.EventConfigReload,
			payload:   eventbus.ConfigReload{Report: eventbus.NewReport()},
		}, nil
	case "version":
		return hostCommand{
			eventType: eventbus.EventVersionRequest,
			payload:   eventbus.VersionRequest{Report: eventbus.NewReport()},
		}, nil
	case "quit", "stop", "exit":
		return hostCommand{quit: true}, nil
	default:
		return hostCommand{}, fmt.Errorf("неизвестная команда: %s", fields[0])
	}
}
