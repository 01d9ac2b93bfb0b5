package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/execution/executors"
	"minidb/execution/expressions"
	"minidb/execution/plans"
	"minidb/transaction"
)

func colEq(idx int, val *db_types.Value) *expressions.CompExpression {
	return expressions.NewCompExpression(expressions.Equal,
		expressions.NewGetColumnExpression(idx, 0),
		expressions.NewConstExpression(*val))
}

func TestDB_DeleteExecutor(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, colEq(0, db_types.NewValue(int32(1))), table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)
	deletePlan := plans.NewDeletePlanNode(scanPlan, table.OID)
	deleted, err := Execute(executors.NewDeleteExecutor(ctx, deletePlan, scan))
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.NoError(t, d.Commit(txn))

	txn = d.BeginTxn(transaction.ReadCommitted)
	ctx = d.NewExecutorContext(txn)
	rows, err := Execute(executors.NewSeqScanExecutor(ctx, plans.NewSeqScanPlanNode(schema, nil, table.OID)))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(2), rows[0].Tuple.GetValue(schema, 0).GetAsInterface().(int32))
}

func TestDB_UpdateExecutor(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)
	assignments := map[int]expressions.IExpression{
		1: expressions.NewConstExpression(*db_types.NewValue("carol")),
	}
	updatePlan := plans.NewUpdatePlanNode(scanPlan, table.OID, assignments)
	_, err := Execute(executors.NewUpdateExecutor(ctx, updatePlan, scan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	txn = d.BeginTxn(transaction.ReadCommitted)
	ctx = d.NewExecutorContext(txn)
	rows, err := Execute(executors.NewSeqScanExecutor(ctx, plans.NewSeqScanPlanNode(schema, nil, table.OID)))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))
	require.Len(t, rows, 1)
	assert.Equal(t, "carol", rows[0].Tuple.GetValue(schema, 1).GetAsInterface().(string))
}

func TestDB_SortAndLimit(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(3)), db_types.NewValue("carol")},
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)
	sortPlan := plans.NewSortPlanNode(schema, scanPlan, []plans.SortKey{
		{Expr: expressions.NewGetColumnExpression(0, 0), Ascending: true},
	})
	sortExec := executors.NewSortExecutor(ctx, sortPlan, scan)
	limitPlan := plans.NewLimitPlanNode(schema, sortPlan, 2)
	rows, err := Execute(executors.NewLimitExecutor(ctx, limitPlan, sortExec))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 2)
	assert.Equal(t, int32(1), rows[0].Tuple.GetValue(schema, 0).GetAsInterface().(int32))
	assert.Equal(t, int32(2), rows[1].Tuple.GetValue(schema, 0).GetAsInterface().(int32))
}

func TestDB_TopN(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(3)), db_types.NewValue("carol")},
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)
	topNPlan := plans.NewTopNPlanNode(schema, scanPlan, []plans.SortKey{
		{Expr: expressions.NewGetColumnExpression(0, 0), Ascending: false},
	}, 2)
	rows, err := Execute(executors.NewTopNExecutor(ctx, topNPlan, scan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 2)
	assert.Equal(t, int32(3), rows[0].Tuple.GetValue(schema, 0).GetAsInterface().(int32))
	assert.Equal(t, int32(2), rows[1].Tuple.GetValue(schema, 0).GetAsInterface().(int32))
}

func TestDB_DistinctExecutor(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(3)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)

	// project onto owner alone via Distinct's own out schema evaluated
	// against the full child row: distinctKey walks the out schema's
	// columns, so an out schema of just "owner" dedupes on that column.
	distinctPlan := plans.NewDistinctPlanNode(catalog.NewSchema([]catalog.Column{schema.GetColumns()[1]}), scanPlan)
	distinctExec := executors.NewDistinctExecutor(ctx, distinctPlan, scan)
	rows, err := Execute(distinctExec)
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 2)
}

func TestDB_IndexScanExecutor(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	index, err := d.Catalog.CreateIndex("accounts_by_id", "accounts", []int{0}, true)
	require.NoError(t, err)

	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewIndexScanPlanNode(schema, table.OID, index.OID, []*db_types.Value{db_types.NewValue(int32(2))})
	rows, err := Execute(executors.NewIndexScanExecutor(ctx, scanPlan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0].Tuple.GetValue(schema, 1).GetAsInterface().(string))
}

func TestDB_HashJoinExecutor(t *testing.T) {
	d := mkDB(t)
	accounts := accountSchema()
	accountsTable := d.Catalog.CreateTable("accounts", accounts)
	insertRows(t, d, accountsTable, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	ordersSchema := catalog.NewSchema([]catalog.Column{
		catalog.NewColumn("account_id", db_types.IntegerTypeID),
		catalog.NewColumn("amount", db_types.IntegerTypeID),
	})
	ordersTable := d.Catalog.CreateTable("orders", ordersSchema)
	insertRows(t, d, ordersTable, [][]*db_types.Value{
		{db_types.NewValue(int32(2)), db_types.NewValue(int32(100))},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	leftPlan := plans.NewSeqScanPlanNode(accounts, nil, accountsTable.OID)
	rightPlan := plans.NewSeqScanPlanNode(ordersSchema, nil, ordersTable.OID)
	left := executors.NewSeqScanExecutor(ctx, leftPlan)
	right := executors.NewSeqScanExecutor(ctx, rightPlan)

	joinPlan := plans.NewHashJoinPlanNode(nil,
		expressions.NewGetColumnExpression(0, 0),
		expressions.NewGetColumnExpression(0, 0),
		leftPlan, rightPlan)
	hashExec := executors.NewHashJoinExecutor(ctx, joinPlan, left, right)
	rows, err := Execute(hashExec)
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 1)
	joined := hashExec.GetOutSchema()
	assert.Equal(t, "bob", rows[0].Tuple.GetValue(joined, 1).GetAsInterface().(string))
	assert.Equal(t, int32(100), rows[0].Tuple.GetValue(joined, 3).GetAsInterface().(int32))
}

func TestDB_ExecuteTimedRecordsStats(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	rows, err := d.ExecuteTimed("seq_scan", executors.NewSeqScanExecutor(ctx, scanPlan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	assert.Len(t, rows, 1)
}

func TestDB_GaugesReportsInFlightTxn(t *testing.T) {
	d := mkDB(t)
	txn := d.BeginTxn(transaction.ReadCommitted)

	gauges := d.Gauges()
	assert.Equal(t, txn.StartedAt(), gauges.OldestTxnStarted)

	require.NoError(t, d.Commit(txn))
	gauges = d.Gauges()
	assert.Equal(t, int64(0), gauges.OldestTxnStarted)
}

func TestDB_AggregationExecutor(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(3)), db_types.NewValue("bob")},
	})

	outSchema := catalog.NewSchema([]catalog.Column{
		catalog.NewColumn("owner", db_types.CharTypeID),
		catalog.NewColumn("count", db_types.IntegerTypeID),
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	scan := executors.NewSeqScanExecutor(ctx, scanPlan)

	having := expressions.NewCompExpression(expressions.GreaterThan,
		expressions.NewGetColumnExpression(1, 0),
		expressions.NewConstExpression(*db_types.NewValue(int32(1))))

	aggPlan := plans.NewAggregationPlanNode(outSchema, scanPlan,
		[]expressions.IExpression{expressions.NewGetColumnExpression(1, 0)},
		[]plans.AggregateTerm{{Type: plans.CountStar}},
		having)
	rows, err := Execute(executors.NewAggregationExecutor(ctx, aggPlan, scan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Tuple.GetValue(outSchema, 0).GetAsInterface().(string))
	assert.Equal(t, int32(2), rows[0].Tuple.GetValue(outSchema, 1).GetAsInterface().(int32))
}
