package qrterm

import (
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// Render writes content as a QR code drawn with half-block characters so a
// phone can scan it straight off the terminal. When the code cannot be built
// the raw content is printed instead.
func Render(w io.Writer, content string) error {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		_, werr := fmt.Fprintf(w, "Unable to draw QR code (%v)\nLink: %s\n", err, content)
		return werr
	}

	_, err = fmt.Fprintf(w, "\n%s\nLink: %s\n", q.ToSmallString(false), content)
	return err
}
