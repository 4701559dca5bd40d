package commands

import (
	"github.com/avetisyanz/dreambot/internal/telegram"
)

type Command interface {
	Name() string
	Aliases() []string
	Execute(update telegram.Update) error
}
