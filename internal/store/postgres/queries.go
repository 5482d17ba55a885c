package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/store"
)

// itemColumns is the column list used for SELECT statements on the items
// table, joined with workspaces for the ref-id prefix.
const itemColumns = `i.id, i.workspace_id, i.seq_num, w.prefix_code,
	i.summary, i.detail, i.status, i.logged_by, i.assigned_to, i.ts,
	i.severity, i.priority, i.cus_int_01, i.cus_int_02, i.cus_int_03,
	i.cus_dbl_01, i.cus_dbl_02, i.cus_str_01, i.cus_str_02,
	i.cus_tim_01, i.cus_tim_02`

const itemFrom = ` FROM items i JOIN workspaces w ON w.id = i.workspace_id`

// eventColumns is the column list for history rows, followed by the parent
// item's columns.
const eventColumns = `h.id, h.item_id, h.logged_by, h.assigned_to, h.status, h.comment, h.ts, ` + itemColumns

const eventFrom = ` FROM history h JOIN items i ON i.id = h.item_id JOIN workspaces w ON w.id = i.workspace_id`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// notFound maps sql.ErrNoRows onto the store sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func queryCreateWorkspace(ctx context.Context, db executor, ws *model.Workspace) error {
	schema, err := ws.MarshalSchema()
	if err != nil {
		return fmt.Errorf("marshal workspace schema: %w", err)
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO workspaces (prefix_code, name, description, schema)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		ws.PrefixCode, ws.Name, ws.Description, []byte(schema),
	).Scan(&ws.ID)
}

func queryGetWorkspace(ctx context.Context, db executor, id int64) (*model.Workspace, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, prefix_code, name, description, schema
		FROM workspaces WHERE id = $1`, id)
	ws, err := scanWorkspace(row)
	if err != nil {
		return nil, notFound(err)
	}
	return ws, nil
}

func queryGetWorkspaceByPrefix(ctx context.Context, db executor, prefixCode string) (*model.Workspace, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, prefix_code, name, description, schema
		FROM workspaces WHERE prefix_code = $1`, prefixCode)
	ws, err := scanWorkspace(row)
	if err != nil {
		return nil, notFound(err)
	}
	return ws, nil
}

func queryUpdateWorkspace(ctx context.Context, db executor, ws *model.Workspace) error {
	schema, err := ws.MarshalSchema()
	if err != nil {
		return fmt.Errorf("marshal workspace schema: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		UPDATE workspaces
		SET prefix_code = $2, name = $3, description = $4, schema = $5
		WHERE id = $1`,
		ws.ID, ws.PrefixCode, ws.Name, ws.Description, []byte(schema),
	)
	return err
}

func queryListWorkspaces(ctx context.Context, db executor) ([]*model.Workspace, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, prefix_code, name, description, schema
		FROM workspaces ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkspaces(rows)
}

func queryFindWorkspacesByIDs(ctx context.Context, db executor, ids []int64) ([]*model.Workspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, prefix_code, name, description, schema
		FROM workspaces WHERE id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY name, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkspaces(rows)
}

func queryCreateUser(ctx context.Context, db executor, u *model.User) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO users (login, name) VALUES ($1, $2) RETURNING id`,
		u.Login, u.Name,
	).Scan(&u.ID)
}

func queryGetUser(ctx context.Context, db executor, id int64) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT id, login, name FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func queryGetUserByLogin(ctx context.Context, db executor, login string) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT id, login, name FROM users WHERE login = $1`, login)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func queryFindUsersByIDs(ctx context.Context, db executor, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, login, name FROM users
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// queryGrantAccess is idempotent: granting twice leaves one membership.
func queryGrantAccess(ctx context.Context, db executor, userID, workspaceID int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO memberships (user_id, workspace_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, workspace_id) DO NOTHING`,
		userID, workspaceID,
	)
	return err
}

func queryVisibleWorkspaces(ctx context.Context, db executor, userID int64) ([]*model.Workspace, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT w.id, w.prefix_code, w.name, w.description, w.schema
		FROM workspaces w
		JOIN memberships m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.name, w.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkspaces(rows)
}

// queryCreateItem allocates the item's per-workspace sequence number and
// inserts the row. The upsert on workspace_seqs is atomic, so concurrent
// creates in one workspace never collide on a sequence number.
func queryCreateItem(ctx context.Context, db executor, item *model.Item) error {
	err := db.QueryRowContext(ctx, `
		INSERT INTO workspace_seqs (workspace_id, next_seq)
		VALUES ($1, 2)
		ON CONFLICT (workspace_id)
		DO UPDATE SET next_seq = workspace_seqs.next_seq + 1
		RETURNING next_seq - 1`,
		item.WorkspaceID,
	).Scan(&item.SeqNum)
	if err != nil {
		return fmt.Errorf("allocate sequence number: %w", err)
	}

	return db.QueryRowContext(ctx, `
		INSERT INTO items (
			workspace_id, seq_num, summary, detail, status, logged_by,
			assigned_to, ts, severity, priority, cus_int_01, cus_int_02,
			cus_int_03, cus_dbl_01, cus_dbl_02, cus_str_01, cus_str_02,
			cus_tim_01, cus_tim_02
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19
		)
		RETURNING id`,
		item.WorkspaceID,
		item.SeqNum,
		item.Summary,
		item.Detail,
		item.Status,
		item.LoggedBy,
		nullID(item.AssignedTo),
		item.Timestamp,
		nullIntPtr(item.Severity),
		nullIntPtr(item.Priority),
		nullIntPtr(item.CusInt01),
		nullIntPtr(item.CusInt02),
		nullIntPtr(item.CusInt03),
		nullFloatPtr(item.CusDbl01),
		nullFloatPtr(item.CusDbl02),
		item.CusStr01,
		item.CusStr02,
		nullTimePtr(item.CusTim01),
		nullTimePtr(item.CusTim02),
	).Scan(&item.ID)
}

func queryGetItem(ctx context.Context, db executor, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+itemFrom+` WHERE i.id = $1`, id)
	it, err := scanItem(row)
	if err != nil {
		return nil, notFound(err)
	}
	return it, nil
}

func queryGetItemByRef(ctx context.Context, db executor, ref model.RefID) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE w.prefix_code = $1 AND i.seq_num = $2`,
		ref.PrefixCode, ref.SeqNum)
	it, err := scanItem(row)
	if err != nil {
		return nil, notFound(err)
	}
	return it, nil
}

func queryUpdateItem(ctx context.Context, db executor, item *model.Item) error {
	res, err := db.ExecContext(ctx, `
		UPDATE items SET
			summary = $2, detail = $3, status = $4, assigned_to = $5,
			severity = $6, priority = $7, cus_int_01 = $8, cus_int_02 = $9,
			cus_int_03 = $10, cus_dbl_01 = $11, cus_dbl_02 = $12,
			cus_str_01 = $13, cus_str_02 = $14, cus_tim_01 = $15, cus_tim_02 = $16
		WHERE id = $1`,
		item.ID,
		item.Summary,
		item.Detail,
		item.Status,
		nullID(item.AssignedTo),
		nullIntPtr(item.Severity),
		nullIntPtr(item.Priority),
		nullIntPtr(item.CusInt01),
		nullIntPtr(item.CusInt02),
		nullIntPtr(item.CusInt03),
		nullFloatPtr(item.CusDbl01),
		nullFloatPtr(item.CusDbl02),
		item.CusStr01,
		item.CusStr02,
		nullTimePtr(item.CusTim01),
		nullTimePtr(item.CusTim02),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// queryMoveItem relocates an item into another workspace. The item gets a
// fresh sequence number there, allocated with the same atomic upsert as
// queryCreateItem; the old ref id is never reused.
func queryMoveItem(ctx context.Context, db executor, item *model.Item, target *model.Workspace) error {
	var seq int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO workspace_seqs (workspace_id, next_seq)
		VALUES ($1, 2)
		ON CONFLICT (workspace_id)
		DO UPDATE SET next_seq = workspace_seqs.next_seq + 1
		RETURNING next_seq - 1`,
		target.ID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("allocate sequence number: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE items SET workspace_id = $2, seq_num = $3 WHERE id = $1`,
		item.ID, target.ID, seq,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	item.WorkspaceID = target.ID
	item.SeqNum = seq
	item.PrefixCode = target.PrefixCode
	return nil
}

func queryRecordEvent(ctx context.Context, db executor, ev *model.HistoryEvent) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO history (item_id, logged_by, assigned_to, status, comment, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ev.ItemID, ev.LoggedBy, nullID(ev.AssignedTo), ev.Status, ev.Comment, ev.Timestamp,
	).Scan(&ev.ID)
}

func queryGetEvents(ctx context.Context, db executor, itemID int64) ([]*model.HistoryEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, item_id, logged_by, assigned_to, status, comment, ts
		FROM history WHERE item_id = $1
		ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.HistoryEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func queryCountItems(ctx context.Context, db executor) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}
