package display

import "image/color"

// Scene is one full-screen status message.
type Scene struct {
	Background color.RGBA
	Foreground color.RGBA
	Title      string
	Detail     string
	Logo       bool
}

var (
	white  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black  = color.RGBA{0, 0, 0, 0xff}
	navy   = color.RGBA{0x00, 0x2b, 0x5c, 0xff} // attract
	green  = color.RGBA{0x00, 0x80, 0x00, 0xff}
	bright = color.RGBA{0x00, 0xb3, 0x00, 0xff}
	amber  = color.RGBA{0xb3, 0xb3, 0x00, 0xff}
	red    = color.RGBA{0xb3, 0x00, 0x00, 0xff}
	orange = color.RGBA{0x80, 0x4d, 0x00, 0xff}
)

// Attract is shown while nobody is using the kiosk.
func Attract() Scene {
	return Scene{Background: navy, Foreground: white, Title: "Swipe your MavID", Detail: "or touch to begin", Logo: true}
}

// Ready is the reader-armed login scene.
func Ready() Scene {
	return Scene{Background: green, Foreground: white, Title: "Reader Ready..."}
}

// Processing is shown while the backend is consulted.
func Processing(msg string) Scene {
	if msg == "" {
		msg = "Verifying ID..."
	}
	return Scene{Background: amber, Foreground: black, Title: msg}
}

// Success is a positive outcome.
func Success(title, detail string) Scene {
	return Scene{Background: bright, Foreground: white, Title: title, Detail: detail}
}

// Failure is a negative outcome.
func Failure(title, detail string) Scene {
	return Scene{Background: red, Foreground: white, Title: title, Detail: detail}
}

// ConnectionLost is shown while the broker or backend is unreachable.
func ConnectionLost() Scene {
	return Scene{Background: orange, Foreground: white, Title: "Connection Lost"}
}

// Blank clears the screen.
func Blank() Scene {
	return Scene{Background: black, Foreground: black}
}
