// Package http exposes the JSON API for accounts, friends, the game
// catalog, schedules, calendar events, notifications and recurring
// schedule templates. Handlers translate between the wire format and
// the application layer; authorization decisions stay in the services.
package http
