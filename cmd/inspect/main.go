// Command inspect dumps the BadgerDB contents of a direct-chat data
// directory as a table, one row per key under the chosen prefix. It opens
// the store read-only so it can run against a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"direct-chat/domain"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, user:, contact:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(
		fmt.Sprintf(" direct-chat store %s [%s] ", *dbPath, *prefix)))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				kind, detail := describe(key, v)
				table.Append([]string{key, kind, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe picks a human-readable rendering per key family. Unknown or
// undecodable values fall back to the raw bytes so a corrupt entry still
// shows up instead of crashing the dump.
func describe(key string, value []byte) (kind, detail string) {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m struct {
			ID          int64         `json:"id"`
			SenderID    domain.UserID `json:"sender_id"`
			RecipientID domain.UserID `json:"recipient_id"`
			Content     string        `json:"content"`
			At          time.Time     `json:"at"`
		}
		if err := json.Unmarshal(value, &m); err != nil {
			break
		}
		return "MESSAGE", fmt.Sprintf("#%d %d->%d at %s: %s",
			m.ID, m.SenderID, m.RecipientID, m.At.Format("15:04:05"), truncate(m.Content, 40))

	case strings.HasPrefix(key, "user:id:"):
		var u struct {
			ID        domain.UserID `json:"id"`
			Username  string        `json:"username"`
			Email     string        `json:"email"`
			CreatedAt time.Time     `json:"created_at"`
		}
		if err := json.Unmarshal(value, &u); err != nil {
			break
		}
		return "USER", fmt.Sprintf("#%d %s <%s> since %s",
			u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))

	case strings.HasPrefix(key, "user:name:"), strings.HasPrefix(key, "user:email:"):
		return "INDEX", "-> user #" + string(value)

	case strings.HasPrefix(key, "contact:"):
		var c struct {
			AddedAt time.Time `json:"added_at"`
		}
		if err := json.Unmarshal(value, &c); err != nil {
			break
		}
		return "CONTACT", "added " + c.AddedAt.Format("2006-01-02 15:04")
	}
	return "RAW", truncate(string(value), 60)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)
	return badger.Open(opts)
}
