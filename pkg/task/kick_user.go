package task

// KickUser terminates every live session of UID. Its result is the number
// of sessions kicked as a uint; zero is a normal outcome.
type KickUser struct {
	UID int
}

func (k KickUser) Execute(table SessionTable) (any, error) {
	var kicked uint
	for _, s := range table.Sessions() {
		if s.UserID() == k.UID {
			s.Kick()
			kicked++
		}
	}

	return kicked, nil
}

// CountUserSessions reports how many live sessions UID has.
type CountUserSessions struct {
	UID int
}

func (c CountUserSessions) Execute(table SessionTable) (any, error) {
	var n uint
	for _, s := range table.Sessions() {
		if s.UserID() == c.UID {
			n++
		}
	}

	return n, nil
}

// Kick submits a KickUser task and waits for the count.
func Kick(c *Channel, uid int) (uint, error) {
	return Await[uint](c.Submit(KickUser{UID: uid}))
}

func CountSessions(c *Channel, uid int) (uint, error) {
	return Await[uint](c.Submit(CountUserSessions{UID: uid}))
}
