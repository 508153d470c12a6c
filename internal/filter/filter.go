package filter

import (
	"time"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

// Filter реализует бизнес-правила отбора фильмов для календаря.
type Filter struct{}

// New создаёт экземпляр фильтра.
func New() *Filter {
	return &Filter{}
}

// Check возвращает причину отсева или DropNone, если фильм проходит в
// календарь. Причины проверяются в фиксированном порядке: нет страны,
// не иностранный, нет даты ближайшего сеанса. Фильм без страны не
// считается иностранным — неизвестное не публикуется.
func (f *Filter) Check(item film.Film, today time.Time) film.DropReason {
	if item.Country == "" {
		return film.DropNoCountry
	}
	if !item.IsForeign() {
		return film.DropNotForeign
	}
	if item.NextDate.IsZero() || item.NextDate.Before(film.DateOf(today)) {
		return film.DropNoDate
	}
	return film.DropNone
}
