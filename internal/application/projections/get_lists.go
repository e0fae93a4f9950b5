package projections

import (
	"context"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/listutil"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// GetPostsResult carries one page of posts.
type GetPostsResult struct {
	Posts []post.Post
	Page  listutil.PageInfo
}

// QueryGetPosts returns a page of posts, newest first.
func QueryGetPosts(ctx context.Context, page listutil.PageParams, publishedOnly bool, store PostStore) (GetPostsResult, error) {
	var (
		posts []post.Post
		err   error
	)
	if publishedOnly {
		posts, err = store.ListPublished(ctx)
	} else {
		posts, err = store.List(ctx)
	}
	if err != nil {
		return GetPostsResult{}, err
	}
	items, info := listutil.Paginate(posts, page)
	return GetPostsResult{Posts: items, Page: info}, nil
}

// GetAccountsResult carries one page of accounts.
type GetAccountsResult struct {
	Accounts []account.Account
	Page     listutil.PageInfo
	Pending  int // accounts without any permission
}

// QueryGetAccounts returns a page of accounts for permission management.
func QueryGetAccounts(ctx context.Context, page listutil.PageParams, store AccountStore) (GetAccountsResult, error) {
	all, err := store.List(ctx)
	if err != nil {
		return GetAccountsResult{}, err
	}
	pending := 0
	for _, a := range all {
		if a.Permission == account.PermissionNone {
			pending++
		}
	}
	items, info := listutil.Paginate(all, page)
	return GetAccountsResult{Accounts: items, Page: info, Pending: pending}, nil
}

// GetSettingsResult splits settings into toggles and file links.
type GetSettingsResult struct {
	Toggles []setting.Setting
	Files   []setting.Setting
}

// QueryGetSettings lists settings grouped by declared type.
func QueryGetSettings(ctx context.Context, store SettingStore) (GetSettingsResult, error) {
	all, err := store.List(ctx)
	if err != nil {
		return GetSettingsResult{}, err
	}
	var res GetSettingsResult
	for _, s := range all {
		if s.Type == setting.TypeBoolean {
			res.Toggles = append(res.Toggles, s)
		} else {
			res.Files = append(res.Files, s)
		}
	}
	return res, nil
}
