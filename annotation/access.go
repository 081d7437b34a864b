package annotation

import (
	"strings"

	"github.com/jacoelho/xsdmeta/metadata"
	"github.com/jacoelho/xsdmeta/schema"
)

// Access control appinfo sources. Each holds one role name.
const (
	SourceHide               = "X_Hide"
	SourceWrite              = "X_Write"
	SourceDenyCreate         = "X_Deny_Create"
	SourceDenyLogicalDelete  = "X_Deny_LogicalDelete"
	SourceDenyPhysicalDelete = "X_Deny_PhysicalDelete"
)

// UserAccessProcessor collects role restrictions on types and fields. The
// delete and create denials only apply to types.
type UserAccessProcessor struct{}

func (UserAccessProcessor) Name() string { return "user-access" }

func (UserAccessProcessor) ProcessType(ctx *Context, pass Pass, b *metadata.TypeBuilder) error {
	if pass != PassReference {
		return nil
	}
	access := b.Access()
	if collectRoles(ctx.Annotation, &access, true) {
		b.SetAccess(access)
	}
	return nil
}

func (UserAccessProcessor) ProcessField(ctx *Context, pass Pass, s *State) error {
	if pass == PassReference {
		collectRoles(ctx.Annotation, &s.Access, false)
	}
	return nil
}

func collectRoles(a *schema.Annotation, access *metadata.Access, typeLevel bool) bool {
	changed := false
	for _, info := range a.AppInfo {
		role := strings.TrimSpace(info.Text)
		if role == "" {
			continue
		}
		var list *[]string
		switch info.Source {
		case SourceHide:
			list = &access.Hide
		case SourceWrite:
			list = &access.Write
		case SourceDenyCreate:
			if typeLevel {
				list = &access.DenyCreate
			}
		case SourceDenyLogicalDelete:
			if typeLevel {
				list = &access.DenyLogicalDelete
			}
		case SourceDenyPhysicalDelete:
			if typeLevel {
				list = &access.DenyPhysicalDelete
			}
		}
		if list != nil {
			*list = append(*list, role)
			changed = true
		}
	}
	return changed
}
