// Package keyset implements keyset (seek) pagination on top of gorm.
//
// A Token is an opaque, url-safe string describing the position right after
// the last row of the previous page. Decoded, it is a list of bounds
//
//	[(C1, O1, V1), (C2, O2, V2) ... (Cn, On, Vn)]
//
// one per sort column, which is expanded into the filter
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2) OR ... OR (C1 = V1 AND ... AND Cn On Vn)
//
// The last sort column MUST be unique, otherwise rows sharing the same sort
// key may be skipped.
//
// Typical usage in a list handler:
//
//	pager, err := keyset.Decode(limit, after, keyset.Asc("created_at"), keyset.Asc("seq"))
//	if err != nil {
//		return err
//	}
//
//	db, err := pager.WithLookahead().Paginate(db.Model(&Record{}))
//	...
//	rows, next, err := keyset.Next(pager, rows, getters)
package keyset
