package service

import (
	"strconv"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// window clamps rng to total. ok is false when nothing is selected.
func window(rng model.Range, total int) (offset, count int, ok bool) {
	end := min(rng.End, total)
	if rng.Start >= end {
		return 0, 0, false
	}
	return rng.Start, end - rng.Start, true
}

func requireValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.NewUsageError("%s must not be empty", field)
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func contains(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
