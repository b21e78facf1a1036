package game

// Combatant is the battle-time view of a Pokemon. Health lives here so the stored
// record stays untouched and one Pokemon can appear in several battles at once.
type Combatant struct {
	Pokemon *Pokemon
	HP      int
}

func NewCombatant(p *Pokemon) *Combatant {
	return &Combatant{Pokemon: p, HP: p.HP}
}

func (c *Combatant) ResetHP() {
	c.HP = c.Pokemon.HP
}

// ReceiveDamage lowers HP, never below zero, and reports whether the combatant fainted.
// Negative amounts count as zero.
func (c *Combatant) ReceiveDamage(amount int) bool {
	if amount < 0 {
		amount = 0
	}
	c.HP = max(0, c.HP-amount)
	return c.HP == 0
}

func (c *Combatant) Fainted() bool {
	return c.HP == 0
}

func (c *Combatant) MaxHP() int {
	return c.Pokemon.HP
}

func (c *Combatant) Name() string {
	return c.Pokemon.Name
}
