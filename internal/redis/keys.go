package redisx

import "fmt"

const ns = "resvgo:v1"

func KeyEventTicketTypes(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:tickettypes", ns, eventID)
}

func KeyTicketTypeAvailability(ticketTypeID int64) string {
	return fmt.Sprintf("%s:tickettype:%d:availability", ns, ticketTypeID)
}

func KeySeatLock(seatID int64) string {
	return fmt.Sprintf("%s:seatlock:%d", ns, seatID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelInventoryChanged() string {
	return ns + ":inventory:changed"
}
