// Package prompttest provides a scripted prompt.Prompter for tests.
package prompttest

import "fmt"

// Answer is one scripted response. Confirm consumes Yes; ChooseOne consumes
// Choice, where a negative Choice selects cancel.
type Answer struct {
	Yes    bool
	Choice int
}

// Yes and No are scripted confirmations.
var (
	Yes = Answer{Yes: true}
	No  = Answer{Yes: false}
)

// Choose scripts a ChooseOne selection by index.
func Choose(i int) Answer { return Answer{Choice: i} }

// Cancel scripts a ChooseOne cancel.
var Cancel = Answer{Choice: -1}

// Scripted replays answers in order and records every question asked.
// Running out of answers is a test bug and returns an error.
type Scripted struct {
	answers   []Answer
	Questions []string
}

// New returns a Scripted prompter that will give answers in order.
func New(answers ...Answer) *Scripted {
	return &Scripted{answers: answers}
}

// Remaining returns how many scripted answers were not consumed.
func (s *Scripted) Remaining() int {
	return len(s.answers)
}

func (s *Scripted) next(question string) (Answer, error) {
	s.Questions = append(s.Questions, question)
	if len(s.answers) == 0 {
		return Answer{}, fmt.Errorf("unexpected question %q: no scripted answers left", question)
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *Scripted) Confirm(question string) (bool, error) {
	a, err := s.next(question)
	return a.Yes, err
}

func (s *Scripted) ChooseOne(question string, options []string, cancel string) (int, bool, error) {
	a, err := s.next(question)
	if err != nil {
		return 0, false, err
	}
	if a.Choice < 0 {
		return 0, false, nil
	}
	if a.Choice >= len(options) {
		return 0, false, fmt.Errorf("scripted choice %d out of range for %q", a.Choice, question)
	}
	return a.Choice, true, nil
}
