package main

import (
	"context"
	"fmt"

	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/db"
	"minidb/execution/executors"
	"minidb/execution/plans"
	"minidb/internal/statusserver"
	"minidb/transaction"
)

func main() {
	d, err := db.Open("", 32, 2)
	if err != nil {
		panic(err)
	}
	defer d.Close()

	statusCtx, stopStatus := context.WithCancel(context.Background())
	defer stopStatus()
	status := statusserver.NewServer(8080, d.Gauges)
	go func() {
		if err := status.ListenAndServe(statusCtx); err != nil {
			fmt.Println("status server stopped:", err)
		}
	}()

	schema := catalog.NewSchema([]catalog.Column{
		catalog.NewColumn("id", db_types.IntegerTypeID),
		catalog.NewColumn("name", db_types.CharTypeID),
	})
	table := d.Catalog.CreateTable("accounts", schema)

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	insertPlan := plans.NewRawInsertPlanNode([][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	}, table.OID)
	if _, err := db.Execute(executors.NewInsertExecutor(ctx, insertPlan, nil)); err != nil {
		panic(err)
	}
	if err := d.Commit(txn); err != nil {
		panic(err)
	}

	txn = d.BeginTxn(transaction.ReadCommitted)
	ctx = d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	rows, err := db.Execute(executors.NewSeqScanExecutor(ctx, scanPlan))
	if err != nil {
		panic(err)
	}
	if err := d.Commit(txn); err != nil {
		panic(err)
	}

	for _, row := range rows {
		id := row.Tuple.GetValue(schema, 0).GetAsInterface().(int32)
		name := row.Tuple.GetValue(schema, 1).GetAsInterface().(string)
		fmt.Printf("account %d: %s\n", id, name)
	}
}
