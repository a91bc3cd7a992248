package transgender

import "io"

// Validate reads a flag from r and checks that it is laid out the way Encode
// writes it: every row outside the data band is its band's color, and the
// data band is one unbroken run of qbit pixels holding whole bytes, followed
// only by padding. It is a sanity check and says nothing
// about whether the payload is the one originally encoded.
func Validate(r io.Reader) error {
	var d decoder
	if err := d.decode(r); err != nil {
		return err
	}

	if d.stray {
		return ErrStray
	}

	if d.gap {
		return ErrGap
	}

	if d.run&1 != 0 {
		return ErrOddNibbles
	}

	return nil
}
