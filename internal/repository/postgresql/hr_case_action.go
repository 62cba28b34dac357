package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type hrCaseActionRepositoryImpl struct {
	db *database.DB
}

func NewHrCaseActionRepository(db *database.DB) absence.ActionRepository {
	return &hrCaseActionRepositoryImpl{db: db}
}

// Create implements absence.ActionRepository. The action and its documents
// are written with the caller's transaction when one is in ctx.
func (r *hrCaseActionRepositoryImpl) Create(ctx context.Context, action absence.HrCaseAction) (absence.HrCaseAction, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return absence.HrCaseAction{}, fmt.Errorf("generate action id: %w", err)
	}
	action.ID = id.String()

	query := `
		INSERT INTO hr_case_actions (id, case_id, action, signed_by, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = q.QueryRow(ctx, query,
		action.ID,
		action.CaseID,
		action.Action,
		action.SignedBy,
		action.Note,
		action.CreatedBy,
		action.CreatedAt,
	).Scan(&action.CreatedAt)
	if err != nil {
		return absence.HrCaseAction{}, translateCaseError("create case action", err)
	}

	docQuery := `
		INSERT INTO hr_case_action_documents (id, action_id, scope, doc_no)
		VALUES ($1, $2, $3, $4)
	`
	for i := range action.Documents {
		docID, err := uuid.NewV7()
		if err != nil {
			return absence.HrCaseAction{}, fmt.Errorf("generate document id: %w", err)
		}
		doc := &action.Documents[i]
		doc.ID = docID.String()
		doc.ActionID = action.ID
		if _, err := q.Exec(ctx, docQuery, doc.ID, doc.ActionID, doc.Scope, doc.DocNo); err != nil {
			return absence.HrCaseAction{}, database.Dependency("create action document", err)
		}
	}

	return action, nil
}

// ListByCaseID implements absence.ActionRepository. Newest action first.
func (r *hrCaseActionRepositoryImpl) ListByCaseID(ctx context.Context, caseID string) ([]absence.HrCaseAction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.case_id, a.action, a.signed_by, a.note, a.created_by, a.created_at,
			   d.id, d.scope, d.doc_no
		FROM hr_case_actions a
		LEFT JOIN hr_case_action_documents d ON d.action_id = a.id
		WHERE a.case_id = $1
		ORDER BY a.created_at DESC, a.id DESC, d.scope ASC, d.doc_no ASC
	`

	rows, err := q.Query(ctx, query, caseID)
	if err != nil {
		return nil, translateCaseError("list case actions", err)
	}
	defer rows.Close()

	actions := make([]absence.HrCaseAction, 0)
	index := make(map[string]int)
	for rows.Next() {
		var a absence.HrCaseAction
		var docID, scope, docNo *string
		if err := rows.Scan(&a.ID, &a.CaseID, &a.Action, &a.SignedBy, &a.Note, &a.CreatedBy, &a.CreatedAt,
			&docID, &scope, &docNo); err != nil {
			return nil, database.Dependency("scan case action", err)
		}

		i, seen := index[a.ID]
		if !seen {
			a.Documents = []absence.HrCaseActionDocument{}
			actions = append(actions, a)
			i = len(actions) - 1
			index[a.ID] = i
		}
		if docID != nil {
			actions[i].Documents = append(actions[i].Documents, absence.HrCaseActionDocument{
				ID:       *docID,
				ActionID: a.ID,
				Scope:    *scope,
				DocNo:    *docNo,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, database.Dependency("list case actions", err)
	}

	return actions, nil
}
