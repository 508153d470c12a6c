package scrape

import (
	"strings"
	"testing"
)

func TestParseDetail_StrategyOrder(t *testing.T) {
	t.Run("структурные селекторы", func(t *testing.T) {
		body := []byte(`<html><body>
			<h1>Амели</h1>
			<div data-test="ITEM-META">
				<ul>
					<li>Страна: Франция, Германия</li>
					<li>Жанр: мелодрама</li>
				</ul>
			</div>
			<span data-test="AGE-RESTRICTION">16+</span>
			<div data-test="DESCRIPTION">История застенчивой официантки из Монмартра.</div>
		</body></html>`)

		d := ParseDetail(body)
		if d.Title != "Амели" {
			t.Errorf("Title = %q", d.Title)
		}
		if d.Country != "Франция" {
			t.Errorf("Country = %q, want первая страна из перечисления", d.Country)
		}
		if d.CountryVia != ViaMeta {
			t.Errorf("CountryVia = %q, want %q", d.CountryVia, ViaMeta)
		}
		if d.AgeLimit != "16+" || d.AgeVia != ViaMeta {
			t.Errorf("AgeLimit = %q via %q", d.AgeLimit, d.AgeVia)
		}
		if d.DescriptionVia != ViaMeta {
			t.Errorf("DescriptionVia = %q", d.DescriptionVia)
		}
	})

	t.Run("запасные селекторы по классам", func(t *testing.T) {
		body := []byte(`<html><body>
			<h1>Паразиты</h1>
			<span class="movie-country-label">Южная Корея</span>
			<span class="age-badge">18+</span>
			<div class="synopsis-block"><p>Семья Ки-тхэка перебивается случайными заработками.</p></div>
		</body></html>`)

		d := ParseDetail(body)
		if d.Country != "Южная Корея" || d.CountryVia != ViaClass {
			t.Errorf("Country = %q via %q", d.Country, d.CountryVia)
		}
		if d.AgeLimit != "18+" || d.AgeVia != ViaClass {
			t.Errorf("AgeLimit = %q via %q", d.AgeLimit, d.AgeVia)
		}
		if d.DescriptionVia != ViaClass {
			t.Errorf("DescriptionVia = %q", d.DescriptionVia)
		}
	})

	t.Run("регулярные выражения по полному тексту", func(t *testing.T) {
		body := []byte(`<html><head>
			<meta property="og:title" content="Олдбой"/>
			<meta property="og:description" content="Человека похищают и держат в заточении пятнадцать лет."/>
		</head><body>
			<div>Производство. Страна: Южная Корея. Год: 2003.</div>
		</body></html>`)

		d := ParseDetail(body)
		if d.Title != "Олдбой" {
			t.Errorf("Title = %q, want из og:title", d.Title)
		}
		if d.Country != "Южная Корея" || d.CountryVia != ViaRegex {
			t.Errorf("Country = %q via %q", d.Country, d.CountryVia)
		}
		if d.DescriptionVia != ViaRegex {
			t.Errorf("DescriptionVia = %q", d.DescriptionVia)
		}
	})

	t.Run("полный промах", func(t *testing.T) {
		d := ParseDetail([]byte(`<html><body><p>Страница не найдена</p></body></html>`))
		if d.Country != "" || d.CountryVia != ViaMiss {
			t.Errorf("Country = %q via %q, want пусто/miss", d.Country, d.CountryVia)
		}
		if d.AgeLimit != "" || d.AgeVia != ViaMiss {
			t.Errorf("AgeLimit = %q via %q", d.AgeLimit, d.AgeVia)
		}
		if d.Description != "" || d.DescriptionVia != ViaMiss {
			t.Errorf("Description = %q via %q", d.Description, d.DescriptionVia)
		}
	})

	t.Run("ломаная вёрстка без паники", func(t *testing.T) {
		d := ParseDetail([]byte(`<div><<<span class="country">Франция`))
		// goquery чинит разметку как браузер; главное — отсутствие паники
		_ = d
	})
}

func TestParseDetail_CountryNormalized(t *testing.T) {
	body := []byte(`<html><body>
		<div data-test="ITEM-META"><li>Страна: russia</li></div>
	</body></html>`)

	d := ParseDetail(body)
	if d.Country != "Россия" {
		t.Errorf("Country = %q, want нормализованное \"Россия\"", d.Country)
	}
}

func TestParseDetail_DescriptionClipped(t *testing.T) {
	long := strings.Repeat("о", 400)
	body := []byte(`<html><body><div data-test="DESCRIPTION">` + long + `</div></body></html>`)

	d := ParseDetail(body)
	if runes := []rune(d.Description); len(runes) != 303 {
		t.Errorf("длина описания = %d рун, want 303 (300 + многоточие)", len(runes))
	}
	if !strings.HasSuffix(d.Description, "...") {
		t.Error("описание не завершается многоточием")
	}
}

func TestParseDetail_YearAndPoster(t *testing.T) {
	body := []byte(`<html><body>
		<div>
			<h1>Амели</h1>
			<span>Франция, 2001</span>
		</div>
		<div class="poster-wrap"><img src="https://img.test/amelie.jpg" alt="кадр"/></div>
	</body></html>`)

	d := ParseDetail(body)
	if d.Year != 2001 {
		t.Errorf("Year = %d, want 2001", d.Year)
	}
	if d.PosterURL != "https://img.test/amelie.jpg" {
		t.Errorf("PosterURL = %q", d.PosterURL)
	}
}
