package closure

import "github.com/sanosuguru/go-court-booking/internal/domain/slot"

func slotID(s string) slot.ID { return slot.ID(s) }
