package dice

// Roller produces die faces. All evaluation in the dice engine is a pure
// function of its input and one Roller.
type Roller interface {
	// RollNumber returns a uniformly distributed value in [1, sides].
	//
	// Precondition: sides >= 1.
	RollNumber(sides uint32) uint32
}

// RollerFactory creates a fresh Roller for each command. Rollers are never
// shared between concurrently executing commands.
type RollerFactory func() Roller

// sourceRoller adapts a Source into a Roller.
type sourceRoller struct {
	src Source
}

// NewRoller returns a Roller that draws from src.
//
// Precondition: src must be non-nil.
func NewRoller(src Source) Roller {
	return &sourceRoller{src: src}
}

// RollNumber returns a value in [1, sides].
func (r *sourceRoller) RollNumber(sides uint32) uint32 {
	if sides == 0 {
		panic("dice: RollNumber called with sides == 0")
	}
	return uint32(r.src.Intn(int(sides))) + 1
}

// NewMessageRoller returns a PCG roller seeded from crypto/rand, intended to
// serve exactly one command. It falls back to a crypto/rand backed roller if
// a seed cannot be read.
func NewMessageRoller() Roller {
	seed, err := NewSeed()
	if err != nil {
		return NewRoller(NewCryptoSource())
	}
	return NewRoller(NewSeededSource(seed))
}
