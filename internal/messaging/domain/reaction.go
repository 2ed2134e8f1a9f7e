package domain

// Reaction one user's emoji reaction on one message. At most one reaction
// may exist per (message, user, emoji) triple.
type Reaction struct {
	Emoji    string `bson:"emoji" json:"emoji"`
	UserID   string `bson:"user_id" json:"user_id"`
	UserName string `bson:"user_name" json:"user_name"`
}

// ToggleReaction add-if-absent / remove-if-present. Toggling the same
// triple twice returns the set to its original state.
func ToggleReaction(reactions []Reaction, r Reaction) []Reaction {
	for i, existing := range reactions {
		if existing.Emoji == r.Emoji && existing.UserID == r.UserID {
			return append(reactions[:i:i], reactions[i+1:]...)
		}
	}
	return append(reactions, r)
}

// ReactionGroup display aggregation of one unique emoji
type ReactionGroup struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
	Mine  bool   `json:"mine"`
}

// AggregateReactions fold the flat reaction list into unique-emoji counts,
// enumerated in first-seen order. Mine marks groups containing the current
// user, used for the toggle-vs-add affordance.
func AggregateReactions(reactions []Reaction, currentUserID string) []ReactionGroup {
	var groups []ReactionGroup
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
		}
		groups[i].Count++
		if r.UserID == currentUserID {
			groups[i].Mine = true
		}
	}
	return groups
}
