package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// rowBaselines are the text baselines for the four rows on a 128x64 panel
// with the 7x13 face.
var rowBaselines = [4]int{13, 26, 39, 52}

// OLED renders rows to an SSD1306 over I2C.
type OLED struct {
	bus i2cCloser
	dev *ssd1306.Dev
}

type i2cCloser interface {
	Close() error
}

// NewOLED initializes periph, opens the named I2C bus ("" for the first
// available), and sets up the panel at the default address.
func NewOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}

	return &OLED{bus: bus, dev: dev}, nil
}

// Render draws the four rows onto the panel.
func (o *OLED) Render(rows Rows) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, row := range rows {
		drawer.Dot = fixed.P(0, rowBaselines[i])
		drawer.DrawBytes([]byte(row))
	}

	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

// Close halts the panel and releases the bus.
func (o *OLED) Close() error {
	var errs []error
	if err := o.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt panel: %w", err))
	}
	if err := o.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
