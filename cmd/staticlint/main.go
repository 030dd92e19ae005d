// Staticlint multichecker проекта.
//
// Запуск: go run ./cmd/staticlint ./...
//
// Состав:
//   - osexit: запрет прямого os.Exit в main;
//   - errcheck: необработанные ошибки;
//   - staticcheck: все SA-анализаторы;
//   - simple: упрощения кода S1*;
//   - stylecheck: выбранные ST-проверки;
//   - стандартные проходы x/tools из списка ниже.
package main

import (
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"github.com/kisielk/errcheck/errcheck"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/SversusN/tinyapp/cmd/staticlint/osexit"
)

// ST1000 требует doc на каждый пакет, ST1003 спорит с именами вроде parceCIDR
var stylecheckEnabled = map[string]bool{
	"ST1005": true, // текст ошибки
	"ST1012": true, // имена переменных-ошибок
	"ST1016": true, // одинаковые имена получателей
	"ST1019": true, // двойной импорт
}

func analyzers() []*analysis.Analyzer {
	chks := []*analysis.Analyzer{
		osexit.OSExitAnalyzer,
		errcheck.Analyzer,
		bools.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,
	}
	for _, v := range staticcheck.Analyzers {
		if strings.HasPrefix(v.Analyzer.Name, "SA") {
			chks = append(chks, v.Analyzer)
		}
	}
	for _, v := range simple.Analyzers {
		chks = append(chks, v.Analyzer)
	}
	for _, v := range stylecheck.Analyzers {
		if stylecheckEnabled[v.Analyzer.Name] {
			chks = append(chks, v.Analyzer)
		}
	}
	return chks
}

func main() {
	multichecker.Main(analyzers()...)
}
