package game

// Audio is the sound capability the session drives.
type Audio interface {
	PlayEffect()
	PlayBGAudio()
	StopBGAudio()
}

// NopAudio discards every call.
type NopAudio struct{}

func (NopAudio) PlayEffect()  {}
func (NopAudio) PlayBGAudio() {}
func (NopAudio) StopBGAudio() {}
