package strategy

// Statistics summarises one bankroll path.
type Statistics struct {
	Hands   int     `json:"hands"`
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	Wagered float64 `json:"wagered"`
	Profit  float64 `json:"profit"`

	StartBankroll float64 `json:"start_bankroll"`
	FinalBankroll float64 `json:"final_bankroll"`
	PeakBankroll  float64 `json:"peak_bankroll"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	HighestBet    float64 `json:"highest_bet"`

	WinStreak         int `json:"-"`
	LoseStreak        int `json:"-"`
	LongestWinStreak  int `json:"longest_win_streak"`
	LongestLoseStreak int `json:"longest_lose_streak"`

	Ruined   bool `json:"ruined"`
	RuinTime int  `json:"ruin_time,omitempty"`
}

// NewStatistics starts tracking from the initial bankroll.
func NewStatistics(startBankroll float64) *Statistics {
	return &Statistics{
		StartBankroll: startBankroll,
		FinalBankroll: startBankroll,
		PeakBankroll:  startBankroll,
	}
}

// RecordBet processes one settled stake. Pushes leave the streaks untouched.
func (s *Statistics) RecordBet(stake, profit, bankroll float64) {
	s.Hands++
	s.Bets++
	s.Wagered += stake
	s.Profit += profit
	s.FinalBankroll = bankroll

	switch {
	case profit > 0:
		s.Wins++
		s.WinStreak++
		s.LoseStreak = 0
	case profit < 0:
		s.Losses++
		s.LoseStreak++
		s.WinStreak = 0
	default:
		s.Pushes++
	}

	if stake > s.HighestBet {
		s.HighestBet = stake
	}
	if s.WinStreak > s.LongestWinStreak {
		s.LongestWinStreak = s.WinStreak
	}
	if s.LoseStreak > s.LongestLoseStreak {
		s.LongestLoseStreak = s.LoseStreak
	}
	if bankroll > s.PeakBankroll {
		s.PeakBankroll = bankroll
	}
	if dd := s.PeakBankroll - bankroll; dd > s.MaxDrawdown {
		s.MaxDrawdown = dd
	}
	if bankroll <= 0 && !s.Ruined {
		s.Ruined = true
		s.RuinTime = s.Hands
	}
}

// RecordIdle counts a hand played after ruin.
func (s *Statistics) RecordIdle() {
	s.Hands++
}

// ROI is profit over total wagered, in percent.
func (s *Statistics) ROI() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return s.Profit / s.Wagered * 100
}
