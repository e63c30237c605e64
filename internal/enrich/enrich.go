// Package enrich synthesizes marketing copy for a product from its display
// name. The parse pipeline leaves descriptions empty; clients run this stage
// before rendering.
package enrich

import (
	"regexp"
	"strings"
)

const fallbackName = "Computer component"

var (
	capacityPattern  = regexp.MustCompile(`(?i)(\d+)\s*гб`)
	ddrPattern       = regexp.MustCompile(`(?i)\bDDR\d\b`)
	frequencyPattern = regexp.MustCompile(`(?i)(\d{4,5})\s*МГц`)
	clockPattern     = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*ГГц`)
	corePattern      = regexp.MustCompile(`(?i)(\d+)\s*(?:яд(?:ра|ер)|cores?)`)
	seriesPattern    = regexp.MustCompile(`(?i)\b(RTX|GTX|RX)\s*\d{3,4}\b`)
)

var toneVariants = []string{
	"Стабильно работает в играх, многозадачности и ресурсоемких приложениях.",
	"Поддерживает плавный отклик системы при повседневной и профессиональной нагрузке.",
	"Сбалансирован для производительных сборок с акцентом на надежность и скорость.",
	"Практичный выбор для апгрейда, когда важны ресурс, стабильность и эффективность.",
}

var usageVariants = []string{
	"Подойдет для игровых и рабочих станций, где важны стабильные результаты и комфорт в работе.",
	"Рекомендуется для энтузиастов и создателей контента, которым нужна предсказуемая производительность.",
	"Хорошо вписывается в современные платформы с упором на апгрейд и долгий срок службы.",
	"Уверенно закрывает задачи от повседневного использования до требовательных сценариев.",
}

// Describe builds a full description: a spec summary plus tone and usage
// sentences picked deterministically from the name.
func Describe(name string) string {
	safe := name
	if strings.TrimSpace(safe) == "" {
		safe = fallbackName
	}
	return Summary(safe) + " " + pickVariant(toneVariants, hash(safe)) + " " +
		pickVariant(usageVariants, hash(safe)+7)
}

// Brand returns the first word of the name, used as the vendor label.
func Brand(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Модуль"
	}
	return fields[0]
}

// SpecFragments extracts recognizable hardware spec fragments from a product
// name: memory capacity, DDR generation, frequency, clock speed, core count,
// and GPU series.
func SpecFragments(name string) []string {
	var fragments []string
	if m := capacityPattern.FindStringSubmatch(name); m != nil {
		fragments = append(fragments, m[1]+" ГБ")
	}
	if m := ddrPattern.FindString(name); m != "" {
		fragments = append(fragments, strings.ToUpper(m))
	}
	if m := frequencyPattern.FindStringSubmatch(name); m != nil {
		fragments = append(fragments, m[1]+" МГц")
	}
	if m := clockPattern.FindStringSubmatch(name); m != nil {
		fragments = append(fragments, strings.ReplaceAll(m[1], ",", ".")+" ГГц")
	}
	if m := corePattern.FindStringSubmatch(name); m != nil {
		fragments = append(fragments, m[1]+" ядер")
	}
	if m := seriesPattern.FindString(name); m != "" {
		fragments = append(fragments, strings.ToUpper(m))
	}
	return fragments
}

// Summary renders the spec fragments into one sentence, with a generic
// fallback when the name carries no recognizable specs.
func Summary(name string) string {
	brand := Brand(name)
	fragments := SpecFragments(name)
	if len(fragments) == 0 {
		return brand + ": компонент для стабильной производительности в современных сборках ПК."
	}
	return brand + ": конфигурация " + strings.Join(fragments, " · ") +
		" для мощной и сбалансированной системы."
}

func pickVariant(variants []string, seed uint32) string {
	return variants[int(seed)%len(variants)]
}

// hash is a 31-multiplier rolling hash over the name's code points, wrapped
// to 32 bits so the same name always picks the same variants.
func hash(value string) uint32 {
	var h uint32
	for _, r := range value {
		h = h*31 + uint32(r)
	}
	return h
}
