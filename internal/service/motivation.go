package service

// MotivationalMessage maps a streak length to a message. Total and
// deterministic: every non-negative value falls into exactly one band.
func MotivationalMessage(currentStreak int) string {
	switch {
	case currentStreak <= 0:
		return "Every streak starts with a single day. Jump into a room and get going!"
	case currentStreak < 3:
		return "Nice start! Come back tomorrow to keep your streak alive."
	case currentStreak < 7:
		return "You're on a roll! A full week is within reach."
	case currentStreak < 30:
		return "Impressive dedication! Your streak is really taking off."
	default:
		return "A whole month and counting. You're a CollabSpace legend!"
	}
}
