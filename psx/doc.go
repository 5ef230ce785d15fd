// Package psx drives Sony PS1/PS2 wired controllers over a bit-banged
// four-wire serial bus.
//
// The package implements the protocol engine only: the byte shifter, the
// variable length frame transceiver, the configuration state machine that
// switches a pad into analog, rumble and pressure modes, and the polling loop
// that turns frames into button events. Pin access and timing are supplied by
// the caller through the Pin and Clock interfaces; the gpio package provides
// Linux backends.
//
// # Wiring
//
// The controller uses open-collector data lines. DAT needs a pull-up
// (1kΩ to 3.3V is typical) and ATT is active low.
//
//	Controller Pin | Function | Direction
//	---------------|----------|-------------------------------
//	1              | DAT      | Input, pull-up
//	2              | CMD      | Output
//	3              | 7.6V     | Rumble motor supply (optional)
//	4              | GND      |
//	5              | VCC      | 3.3V
//	6              | ATT      | Output, active low
//	7              | CLK      | Output
//	9              | ACK      | Not used
//
// # Usage
//
//	pad, res := psx.Initialize(pins, psx.Options{EnableSticks: true})
//	if !res.Connected() {
//	    log.Println("pad:", res.Err)
//	}
//	for {
//	    events, err := pad.Update()
//	    if errors.Is(err, psx.ErrDisconnected) {
//	        continue
//	    }
//	    for _, ev := range events {
//	        fmt.Println(ev.Name, ev.Pressed)
//	    }
//	    time.Sleep(10 * time.Millisecond)
//	}
//
// A Controller is not safe for concurrent use. Each pad needs its own
// Controller and its own set of pins.
package psx
