package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flujo-dev/flujo/internal/importer"
	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/projection"
	"github.com/flujo-dev/flujo/internal/rules"
)

func loadFixtures(t *testing.T) ([]model.Transaction, []model.ProjectionEntry) {
	t.Helper()
	reg := importer.DefaultRegistry()

	sheet, err := reg.Open("../../testdata/cartola_junio_2025.csv")
	require.NoError(t, err)
	txns, _, err := importer.NewStatementParser(importer.DefaultColumns()).Parse(sheet)
	require.NoError(t, err)
	txns = importer.Shape(txns, rules.DefaultTable(rules.VariantComparativo))

	sheet, err = reg.Open("../../testdata/flujo_proyectado.csv")
	require.NoError(t, err)
	m, err := projection.ReadMatrix(sheet, projection.Options{})
	require.NoError(t, err)
	return txns, projection.Unpivot(m)
}

func TestFixture_ReconcileAndEvaluate(t *testing.T) {
	txns, entries := loadFixtures(t)

	rows := Reconcile(entries, Aggregate(txns))
	require.Len(t, rows, len(entries))

	asOf, ok := AsOf(txns)
	require.True(t, ok)
	assert.Equal(t, date(2025, 6, 20), asOf)

	evals := Evaluate(rows, asOf, DefaultThresholds())
	require.Len(t, evals, 3)

	may, jun, jul := evals[0], evals[1], evals[2]

	assert.True(t, may.Projected.Equal(dec("1150000")))
	assert.True(t, may.Actual.IsZero())
	assert.True(t, may.Elapsed.Equal(dec("1")))
	assert.Equal(t, model.SeverityCritical, may.Severity)
	assert.Equal(t, model.SeverityCritical, may.AdjustedSeverity)

	assert.True(t, jun.Projected.Equal(dec("1350000")))
	assert.True(t, jun.Actual.Equal(dec("1230000")))
	assert.True(t, jun.Variance.Equal(dec("-120000")))
	assert.Equal(t, model.SeverityAttention, jun.Severity)
	assert.True(t, jun.AdjustedProjected.Equal(dec("900000")))
	assert.True(t, jun.AdjustedVariance.Equal(dec("330000")))
	assert.Equal(t, model.SeverityOK, jun.AdjustedSeverity)

	assert.True(t, jul.Projected.Equal(dec("1200000")))
	assert.Equal(t, model.SeverityCritical, jul.Severity)
	assert.True(t, jul.Elapsed.IsZero())
	assert.Equal(t, model.SeverityNoProgress, jul.AdjustedSeverity)

	// Unclassified and bank fees are not projected.
	var labels []model.Classification
	for _, a := range Unprojected(entries, Aggregate(txns)) {
		labels = append(labels, a.Classification)
	}
	assert.ElementsMatch(t, []model.Classification{rules.LabelComisiones, model.Unclassified}, labels)
}

func TestFixture_CoverageAndSummary(t *testing.T) {
	txns, _ := loadFixtures(t)

	cov := Coverage(txns, nil)
	assert.Equal(t, date(2025, 6, 20), cov.Cutoff)
	assert.Equal(t, 7, cov.Total)
	assert.Equal(t, 6, cov.Classified)
	require.Len(t, cov.Unclassified, 1)
	assert.Equal(t, "Cargo varios", cov.Unclassified[0].Description)
	assert.Equal(t, "85.71", cov.Percent.StringFixed(2))

	cutoff := date(2025, 6, 5)
	early := Coverage(txns, &cutoff)
	assert.Equal(t, 3, early.Total)
	assert.Equal(t, 3, early.Classified)
	assert.Equal(t, "100.00", early.Percent.StringFixed(2))

	sum := Summarize(txns, dec("1000000"))
	assert.True(t, sum.Credits.Equal(dec("650000")))
	assert.True(t, sum.Debits.Equal(dec("735000")))
	assert.True(t, sum.Net.Equal(dec("-85000")))
	assert.True(t, sum.ComputedClosing.Equal(dec("915000")))
	require.NotNil(t, sum.StatementBalance)
	assert.True(t, sum.StatementBalance.Equal(dec("915000")))
	assert.Equal(t, date(2025, 6, 20), *sum.StatementDate)
	assert.True(t, sum.Difference.IsZero())
}

func TestCoverage_NoRows(t *testing.T) {
	cov := Coverage(nil, nil)
	assert.Zero(t, cov.Total)
	assert.True(t, cov.Percent.IsZero())
	assert.True(t, cov.Cutoff.IsZero())
}

func TestSummarize_NoBalance(t *testing.T) {
	sum := Summarize([]model.Transaction{txn(datep(2025, 6, 1), "x", "10", "0")}, dec("5"))
	assert.True(t, sum.ComputedClosing.Equal(dec("15")))
	assert.Nil(t, sum.StatementBalance)
	assert.Nil(t, sum.Difference)
}

func TestSummarize_SameDayLastRowWins(t *testing.T) {
	b1, b2 := dec("100"), dec("90")
	d := datep(2025, 6, 3)
	txns := []model.Transaction{
		{Date: d, Credit: dec("100"), Balance: &b1},
		{Date: d, Debit: dec("10"), Balance: &b2},
		{Date: datep(2025, 6, 1), Balance: &b1},
	}
	sum := Summarize(txns, dec("0"))
	require.NotNil(t, sum.StatementBalance)
	assert.True(t, sum.StatementBalance.Equal(dec("90")))
	assert.True(t, sum.Difference.IsZero())
}

func TestByClassification(t *testing.T) {
	txns, _ := loadFixtures(t)
	totals := ByClassification(txns)

	byLabel := make(map[model.Classification]ClassTotals)
	for i, ct := range totals {
		if i > 0 {
			assert.Less(t, string(totals[i-1].Classification), string(ct.Classification))
		}
		byLabel[ct.Classification] = ct
	}
	facturas := byLabel[rules.LabelFacturasFlujoComp]
	assert.True(t, facturas.Credits.Equal(dec("650000")))
	assert.Equal(t, 2, facturas.Count)

	// Undated rows still count toward totals.
	assert.True(t, byLabel[rules.LabelHonorarios].Debits.Equal(dec("100000")))
}

func TestTotalsByClassification(t *testing.T) {
	txns, entries := loadFixtures(t)
	totals := TotalsByClassification(Reconcile(entries, Aggregate(txns)))
	require.Len(t, totals, 5)

	assert.Equal(t, rules.LabelFacturasFlujoComp, totals[0].Classification)
	assert.True(t, totals[0].Projected.Equal(dec("2100000")))
	assert.True(t, totals[0].Actual.Equal(dec("650000")))
	assert.True(t, totals[0].Variance.Equal(dec("-1450000")))
	assert.Equal(t, model.Classification("GASTOS EDUCACION"), totals[4].Classification)
}

func TestFilter(t *testing.T) {
	txns, entries := loadFixtures(t)
	rows := Reconcile(entries, Aggregate(txns))

	assert.Len(t, Filter{}.Apply(rows), len(rows))

	from := date(2025, 6, 15)
	june := Filter{From: &from, To: &from}.Apply(rows)
	require.Len(t, june, 5)
	for _, r := range june {
		assert.Equal(t, date(2025, 6, 1), r.Month)
	}

	byLabel := Filter{Classifications: []model.Classification{"impuestos", "Gastos Educación"}}.Apply(rows)
	assert.Len(t, byLabel, 4)

	assert.Empty(t, Filter{Classifications: []model.Classification{"NOPE"}}.Apply(rows))
}
