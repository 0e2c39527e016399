package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flujo-dev/flujo/internal/config"
	"github.com/flujo-dev/flujo/internal/logger"
	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/reconcile"
	"github.com/flujo-dev/flujo/internal/report"
	"github.com/flujo-dev/flujo/internal/rules"
)

const (
	statementFixture  = "../../testdata/cartola_junio_2025.csv"
	projectionFixture = "../../testdata/flujo_proyectado.csv"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func newRunner(variant string) *Runner {
	return New(config.Default("Test", variant), rules.DefaultTable(variant))
}

func TestRun_Reconcile(t *testing.T) {
	res, err := newRunner(rules.VariantComparativo).Run(context.Background(), Inputs{
		Statement:  statementFixture,
		Projection: projectionFixture,
		Opening:    dec("1000000"),
	})
	require.NoError(t, err)
	require.True(t, res.Reconciled())

	assert.Len(t, res.Transactions, 8)
	assert.Equal(t, 1, res.StatementStats.BadDates)
	assert.Len(t, res.Entries, 12)
	assert.Len(t, res.Rows, 12)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), res.AsOf)
	assert.Empty(t, res.UnknownLabels)

	require.Len(t, res.Evaluations, 3)
	jun := res.Evaluations[1]
	assert.Equal(t, month(2025, 6), jun.Month)
	assert.Equal(t, model.SeverityAttention, jun.Severity)
	assert.Equal(t, model.SeverityOK, jun.AdjustedSeverity)

	assert.Equal(t, "85.71", res.Coverage.Percent.StringFixed(2))
	require.NotNil(t, res.Summary.Difference)
	assert.True(t, res.Summary.Difference.IsZero())

	assert.Len(t, res.StatementDigest, 64)
	assert.Len(t, res.ProjectionDigest, 64)
	assert.NotEqual(t, res.StatementDigest, res.ProjectionDigest)
}

func TestResult_Tables(t *testing.T) {
	res, err := newRunner(rules.VariantComparativo).Run(context.Background(), Inputs{
		Statement:  statementFixture,
		Projection: projectionFixture,
	})
	require.NoError(t, err)

	tables := res.Tables()
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{
		report.TableReconciliation, report.TableEvaluation, report.TableVariance, report.TableUnprojected,
		report.TableClassified, report.TableClassTotals, report.TableUnclassified, report.TableSummary,
	}, names)

	unprojected := tables[3]
	require.Len(t, unprojected.Rows, 2)
	var labels []string
	for _, r := range unprojected.Rows {
		labels = append(labels, r[0])
	}
	assert.ElementsMatch(t, []string{string(rules.LabelComisiones), string(model.Unclassified)}, labels)

	classified := tables[4]
	assert.Equal(t, []string{
		"FECHA", "DESCRIPCIÓN", "CARGOS (CLP)", "ABONOS (CLP)", "SALDO (CLP)", "Unnamed: 5", "classification", "month",
	}, classified.Header)
	assert.Equal(t, "Factura 123 Cliente Uno", classified.Rows[0][1])
}

func TestRun_Deterministic(t *testing.T) {
	in := Inputs{Statement: statementFixture, Projection: projectionFixture}
	render := func() string {
		res, err := newRunner(rules.VariantComparativo).Run(context.Background(), in)
		require.NoError(t, err)
		var buf bytes.Buffer
		for _, tbl := range res.Tables() {
			require.NoError(t, report.WriteCSV(&buf, tbl))
		}
		return buf.String()
	}
	first := render()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, render())
	}
}

func TestRun_Filter(t *testing.T) {
	jun := month(2025, 6)
	res, err := newRunner(rules.VariantComparativo).Run(context.Background(), Inputs{
		Statement:  statementFixture,
		Projection: projectionFixture,
		Filter:     reconcile.Filter{From: &jun, To: &jun},
	})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 12)
	assert.Len(t, res.Rows, 5)
	require.Len(t, res.Evaluations, 1)
	assert.Equal(t, jun, res.Evaluations[0].Month)
}

func TestRun_UnknownLabelsAreWarned(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf, zerolog.WarnLevel))

	res, err := newRunner(rules.VariantDetallado).Run(ctx, Inputs{Statement: statementFixture, Projection: projectionFixture})
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Classification{
		rules.LabelFacturasFlujoComp,
		rules.LabelProveedoresFijos,
	}, res.UnknownLabels)
	assert.Contains(t, buf.String(), "projection labels no rule produces")
	assert.Contains(t, buf.String(), "statement rows with unreadable values")
	assert.Contains(t, buf.String(), "projection cells ignored")
}

func TestClassify(t *testing.T) {
	res, err := Classify(context.Background(), config.Default("", rules.VariantComparativo),
		rules.DefaultTable(rules.VariantComparativo),
		Inputs{Statement: statementFixture, Projection: projectionFixture})
	require.NoError(t, err)
	assert.False(t, res.Reconciled())
	assert.Nil(t, res.Rows)
	assert.Empty(t, res.ProjectionDigest)

	tables := res.Tables()
	require.Len(t, tables, 4)
	assert.Equal(t, report.TableClassified, tables[0].Name)
	assert.Len(t, tables[0].Rows, 8)
	assert.Equal(t, report.TableUnclassified, tables[2].Name)
	assert.Len(t, tables[2].Rows, 1)
}

func TestRun_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("FECHA,GLOSA\n01/06/2025,x\n"), 0o644))

	_, err := newRunner(rules.VariantComparativo).Run(context.Background(), Inputs{Statement: path})
	require.Error(t, err)

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Missing, "DESCRIPCION")
}

func TestRun_MissingProjectionFile(t *testing.T) {
	_, err := newRunner(rules.VariantComparativo).Run(context.Background(), Inputs{
		Statement:  statementFixture,
		Projection: filepath.Join(t.TempDir(), "nope.csv"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(rules.VariantComparativo).Run(ctx, Inputs{Statement: statementFixture, Projection: projectionFixture})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogEntry(t *testing.T) {
	in := Inputs{Statement: statementFixture, Projection: projectionFixture}
	res, err := newRunner(rules.VariantComparativo).Run(context.Background(), in)
	require.NoError(t, err)

	e := res.LogEntry("reconcile", in, "exports/x.csv")
	assert.Equal(t, "reconcile", e.Command)
	assert.Equal(t, 7, e.Rows)
	assert.Equal(t, 6, e.Classified)
	assert.Equal(t, 1, e.Anomalies)
	assert.Equal(t, res.StatementDigest, e.StatementDigest)
}
