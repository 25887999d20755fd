package main

import "github.com/eiannone/keyboard"

type action int

const (
	actNone action = iota
	actToggle
	actTempoUp
	actTempoDown
	actTempoPageUp
	actTempoPageDown
	actBeatsUp
	actBeatsDown
	actQuit
)

func (a action) String() string {
	switch a {
	case actToggle:
		return "toggle"
	case actTempoUp:
		return "tempo+"
	case actTempoDown:
		return "tempo-"
	case actTempoPageUp:
		return "tempo++"
	case actTempoPageDown:
		return "tempo--"
	case actBeatsUp:
		return "beats+"
	case actBeatsDown:
		return "beats-"
	case actQuit:
		return "quit"
	}
	return "none"
}

func actionFor(ev keyboard.KeyEvent) action {
	switch ev.Key {
	case keyboard.KeySpace, keyboard.KeyEnter:
		return actToggle
	case keyboard.KeyArrowUp:
		return actTempoUp
	case keyboard.KeyArrowDown:
		return actTempoDown
	case keyboard.KeyPgup:
		return actTempoPageUp
	case keyboard.KeyPgdn:
		return actTempoPageDown
	case keyboard.KeyArrowRight:
		return actBeatsUp
	case keyboard.KeyArrowLeft:
		return actBeatsDown
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return actQuit
	}

	switch ev.Rune {
	case ' ':
		return actToggle
	case 'k', '+':
		return actTempoUp
	case 'j', '-':
		return actTempoDown
	case 'K':
		return actTempoPageUp
	case 'J':
		return actTempoPageDown
	case 'l':
		return actBeatsUp
	case 'h':
		return actBeatsDown
	case 'q', 'Q':
		return actQuit
	}
	return actNone
}
